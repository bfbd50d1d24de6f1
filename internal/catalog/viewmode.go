package catalog

import (
	"fmt"
	"strings"

	"github.com/starford/harvest/internal/apperr"
)

// ViewMode is the presentation mode of the farm listing.
type ViewMode string

// View mode constants.
const (
	// List renders the filtered farms as a card grid.
	List ViewMode = "list"
	// Map is a placeholder; no map rendering exists yet.
	Map ViewMode = "map"
)

// IsValid checks if the mode is one of the supported values.
func (m ViewMode) IsValid() bool {
	return m == List || m == Map
}

// Toggle flips between List and Map.
func (m ViewMode) Toggle() ViewMode {
	if m == List {
		return Map
	}
	return List
}

func (m ViewMode) String() string {
	return string(m)
}

// ParseViewMode converts s into a ViewMode, rejecting unknown values.
func ParseViewMode(s string) (ViewMode, error) {
	m := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidViewMode, s)
	}
	return m, nil
}
