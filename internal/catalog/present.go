package catalog

import "github.com/starford/harvest/internal/models"

// MapPlaceholderMessage is shown instead of a map until a map renderer exists.
const MapPlaceholderMessage = "Map view coming soon"

// MapPlaceholder marks the map capability as not yet available.
type MapPlaceholder struct {
	Message   string `json:"message"`
	Available bool   `json:"available"`
}

// View is what a renderer needs to draw the page for one State.
//
// Farms always holds the filtered records so a future map renderer can plot
// the same subset. Placeholder is set only in Map mode.
type View struct {
	Mode         ViewMode        `json:"mode"`
	Query        string          `json:"query"`
	SelectedTags []string        `json:"selected_tags"`
	Vocabulary   []string        `json:"vocabulary"`
	Total        int             `json:"total"`
	Matched      int             `json:"matched"`
	Farms        []models.Farm   `json:"farms"`
	Placeholder  *MapPlaceholder `json:"placeholder,omitempty"`
	Version      string          `json:"version"`
}

// Present evaluates s against c.
func Present(c *Catalog, s State) View {
	farms := c.Filter(s.Query, s.Tags)
	v := View{
		Mode:         s.Mode,
		Query:        s.Query,
		SelectedTags: s.Tags.Ordered(c.vocabulary),
		Vocabulary:   c.Vocabulary(),
		Total:        c.Len(),
		Matched:      len(farms),
		Farms:        farms,
		Version:      c.version,
	}
	if s.Mode == Map {
		v.Placeholder = &MapPlaceholder{Message: MapPlaceholderMessage}
	}
	return v
}
