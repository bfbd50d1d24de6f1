package catalog

import (
	"strings"

	"github.com/starford/harvest/internal/models"
)

// DefaultVocabulary is the fixed tag vocabulary offered by the tag filter, in
// display order.
var DefaultVocabulary = []string{
	"Organic",
	"Free Range",
	"Local Delivery",
	"Grass Fed",
	"Pick Your Own",
	"Farm Stand",
}

// Catalog is an immutable snapshot of farm records. It is safe to share
// between goroutines.
type Catalog struct {
	farms      []models.Farm
	vocabulary []string
	version    string
}

// New creates a catalog over a copy of farms. version identifies the source
// the snapshot was built from.
func New(farms []models.Farm, version string) *Catalog {
	cp := make([]models.Farm, len(farms))
	copy(cp, farms)
	return &Catalog{
		farms:      cp,
		vocabulary: buildVocabulary(cp),
		version:    version,
	}
}

// Farms returns the catalog records in order. Callers must treat them as read-only.
func (c *Catalog) Farms() []models.Farm {
	out := make([]models.Farm, len(c.farms))
	copy(out, c.farms)
	return out
}

// Len returns the number of farms.
func (c *Catalog) Len() int { return len(c.farms) }

// Version returns the source version of the snapshot.
func (c *Catalog) Version() string { return c.version }

// Vocabulary returns the known tags: DefaultVocabulary first, then any other
// tag carried by a farm, sorted.
func (c *Catalog) Vocabulary() []string {
	out := make([]string, len(c.vocabulary))
	copy(out, c.vocabulary)
	return out
}

// Filter applies the search-and-tag filter to the snapshot.
func (c *Catalog) Filter(query string, selected TagSet) []models.Farm {
	return Filter(c.farms, query, selected)
}

// Find returns the first farm whose name equals name, ignoring case.
func (c *Catalog) Find(name string) (models.Farm, bool) {
	for _, f := range c.farms {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return models.Farm{}, false
}

func buildVocabulary(farms []models.Farm) []string {
	var all []string
	for _, f := range farms {
		all = append(all, f.Tags...)
	}
	return NewTagSet(append(all, DefaultVocabulary...)...).Ordered(DefaultVocabulary)
}
