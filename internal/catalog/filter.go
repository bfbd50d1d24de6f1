// Package catalog implements the farm catalog, its search-and-tag filter, and
// the list/map view state that renderers consume.
package catalog

import (
	"strings"

	"github.com/starford/harvest/internal/models"
)

// Filter returns the farms matching query and every selected tag, preserving
// catalog order. The result is never nil.
func Filter(farms []models.Farm, query string, selected TagSet) []models.Farm {
	out := make([]models.Farm, 0, len(farms))
	q := strings.ToLower(query)
	for _, f := range farms {
		if matches(f, q, selected) {
			out = append(out, f)
		}
	}
	return out
}

// matches reports whether f passes both the text and the tag match.
func matches(f models.Farm, lowerQuery string, selected TagSet) bool {
	return matchesText(f, lowerQuery) && matchesTags(f.Tags, selected)
}

// matchesText expects lowerQuery to be lowercased already.
func matchesText(f models.Farm, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(f.Description), lowerQuery)
}

// matchesTags treats nil tags as the empty set, so a farm without tags only
// passes when nothing is selected.
func matchesTags(tags []string, selected TagSet) bool {
	if selected.Len() == 0 {
		return true
	}
	return selected.SubsetOf(NewTagSet(tags...))
}
