// Package tui is the terminal browser for the farm catalog: a search box,
// tag toggles, and a list or map-placeholder body.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/metrics"
)

// Snapshotter supplies the current catalog snapshot.
type Snapshotter interface {
	Catalog() *catalog.Catalog
}

// CatalogReloadedMsg tells the model the catalog changed on disk.
type CatalogReloadedMsg struct {
	Version string
}

// Model is the bubbletea model of the browser.
type Model struct {
	src     Snapshotter
	state   catalog.State
	view    catalog.View
	input   textinput.Model
	focused bool
	err     string
	width   int
	styles  styles
}

// New creates a browser in the initial state: empty search, no tags, list mode.
func New(src Snapshotter) Model {
	in := textinput.New()
	in.Placeholder = "Search farms..."
	in.Prompt = "/ "
	in.CharLimit = 256
	in.Width = 40

	m := Model{
		src:    src,
		state:  catalog.NewState(),
		input:  in,
		styles: defaultStyles(),
	}
	m.refresh()
	return m
}

// State returns the current browse state.
func (m Model) State() catalog.State {
	return m.state
}

// Current returns the last rendered view.
func (m Model) Current() catalog.View {
	return m.view
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case CatalogReloadedMsg:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focused {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.focused = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.apply(catalog.SetQuery{Query: m.input.Value()})
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.focused = true
		cmd := m.input.Focus()
		return m, cmd
	case "m":
		m.apply(catalog.ToggleViewMode{})
	case "c":
		m.input.SetValue("")
		m.apply(catalog.ClearFilters{})
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.view.Vocabulary) {
				m.apply(catalog.ToggleTag{Tag: m.view.Vocabulary[i]})
			}
		}
	}
	return m, nil
}

func (m *Model) apply(ev catalog.Event) {
	next, err := catalog.Update(m.state, ev)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.state = next
	m.refresh()
}

func (m *Model) refresh() {
	m.view = catalog.Present(m.src.Catalog(), m.state)
	metrics.ObserveFilter("tui", m.view.Matched)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.title.Render("Harvest · local farms"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	chips := make([]string, 0, len(m.view.Vocabulary))
	for i, tag := range m.view.Vocabulary {
		label := tag
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, tag)
		}
		if m.state.Tags.Has(tag) {
			chips = append(chips, s.chipActive.Render(label))
		} else {
			chips = append(chips, s.chip.Render(label))
		}
	}
	b.WriteString(strings.Join(chips, " "))
	b.WriteString("\n\n")

	if m.view.Placeholder != nil {
		b.WriteString(s.placeholder.Render(m.view.Placeholder.Message))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(s.err.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(s.muted.Render(fmt.Sprintf("%d of %d farms · mode %s · / search · 1-9 tags · m map/list · c clear · q quit",
		m.view.Matched, m.view.Total, m.view.Mode)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderList() string {
	s := m.styles
	if len(m.view.Farms) == 0 {
		return s.muted.Render("No farms match the current filters.") + "\n"
	}
	width := 60
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	var b strings.Builder
	for _, f := range m.view.Farms {
		lines := []string{
			s.cardTitle.Render(f.Name) + "  " + s.muted.Render(fmt.Sprintf("★ %.1f · %s", f.Rating, f.DistanceLabel)),
			f.Description,
		}
		if len(f.Tags) > 0 {
			lines = append(lines, s.muted.Render(strings.Join(f.Tags, " · ")))
		}
		if contact := joinNonEmpty(" · ", f.Location, f.Contact); contact != "" {
			lines = append(lines, contact)
		}
		if areas := f.DeliveryAreasLabel(); areas != "" {
			lines = append(lines, s.muted.Render("Delivers to: "+areas))
		}
		b.WriteString(s.card.Width(width).Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
