package catalog

import (
	"fmt"

	"github.com/starford/harvest/internal/apperr"
)

// State is one snapshot of a browsing session: the search text, the selected
// tags and the view mode. Snapshots are never mutated; Update returns a new one.
type State struct {
	Query string   `json:"query"`
	Tags  TagSet   `json:"tags"`
	Mode  ViewMode `json:"mode"`
}

// NewState returns the initial session state.
func NewState() State {
	return State{Tags: NewTagSet(), Mode: List}
}

// Event is a user action that produces a new State.
type Event interface {
	apply(State) (State, error)
}

// SetQuery replaces the search text.
type SetQuery struct {
	Query string
}

func (e SetQuery) apply(s State) (State, error) {
	s.Query = e.Query
	return s, nil
}

// ToggleTag adds or removes a single tag from the selection.
type ToggleTag struct {
	Tag string
}

func (e ToggleTag) apply(s State) (State, error) {
	if e.Tag == "" {
		return s, fmt.Errorf("%w: empty tag", apperr.ErrInvalidTag)
	}
	s.Tags = Toggle(s.Tags, e.Tag)
	return s, nil
}

// SetViewMode switches to the given mode.
type SetViewMode struct {
	Mode ViewMode
}

func (e SetViewMode) apply(s State) (State, error) {
	if !e.Mode.IsValid() {
		return s, fmt.Errorf("%w: %q", apperr.ErrInvalidViewMode, e.Mode)
	}
	s.Mode = e.Mode
	return s, nil
}

// ToggleViewMode flips between list and map.
type ToggleViewMode struct{}

func (ToggleViewMode) apply(s State) (State, error) {
	s.Mode = s.Mode.Toggle()
	return s, nil
}

// ClearFilters resets the query and the tag selection, keeping the view mode.
type ClearFilters struct{}

func (ClearFilters) apply(s State) (State, error) {
	s.Query = ""
	s.Tags = NewTagSet()
	return s, nil
}

// Update applies ev to s. On error the original state is returned unchanged.
func Update(s State, ev Event) (State, error) {
	next, err := ev.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}
