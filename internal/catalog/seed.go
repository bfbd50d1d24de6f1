package catalog

import (
	"strings"
	"unicode"

	"github.com/starford/harvest/internal/models"
)

// SeedVersion is the version reported by the built-in catalog.
const SeedVersion = "seed"

// Seed returns the built-in mock catalog used when no catalog directory is
// configured.
func Seed() []models.Farm {
	return []models.Farm{
		{
			Name:          "Green Valley Farm",
			Description:   "Organic vegetables and fruits",
			DistanceLabel: "2.5 miles",
			Rating:        4.5,
			ImageURL:      "https://images.unsplash.com/photo-1500937386664-56d1dfef3854?w=800&auto=format&fit=crop&q=60",
			Tags:          []string{"Organic", "Local Delivery"},
			Location:      "1200 Valley Road, Hillsboro",
			Contact:       "(503) 555-0142",
			DeliveryAreas: []string{"Hillsboro", "Beaverton", "Portland"},
		},
		{
			Name:          "Sunrise Ranch",
			Description:   "Free-range eggs and poultry",
			DistanceLabel: "3.8 miles",
			Rating:        4.8,
			ImageURL:      "https://images.unsplash.com/photo-1500382017468-9049fed747ef?w=800&auto=format&fit=crop&q=60",
			Tags:          []string{"Free Range", "Organic"},
			Location:      "88 Ridge Lane, Forest Grove",
			Contact:       "hello@sunriseranch.example",
			DeliveryAreas: []string{"Forest Grove", "Cornelius"},
		},
		{
			Name:          "Meadow Brook Farm",
			Description:   "Dairy products and cheese",
			DistanceLabel: "5.2 miles",
			Rating:        4.3,
			ImageURL:      "https://images.unsplash.com/photo-1500595046743-cd271d694d30?w=800&auto=format&fit=crop&q=60",
			Tags:          []string{"Grass Fed", "Local Delivery"},
			Location:      "4 Brook Street, Banks",
			Contact:       "(503) 555-0199",
			DeliveryAreas: []string{"Banks", "Hillsboro"},
		},
		{
			Name:          "Orchard Hill",
			Description:   "Apples, pears and seasonal cider",
			DistanceLabel: "7.1 miles",
			Rating:        4.6,
			ImageURL:      "https://images.unsplash.com/photo-1464226184884-fa280b87c399?w=800&auto=format&fit=crop&q=60",
			Tags:          []string{"Pick Your Own", "Farm Stand"},
			Location:      "310 Orchard Way, Gaston",
			Contact:       "orchardhill@example.org",
			DeliveryAreas: []string{},
		},
	}
}

// SeedCatalog returns the built-in mock catalog as a snapshot.
func SeedCatalog() *Catalog {
	return New(Seed(), SeedVersion)
}

// FileName returns the farm file name derived from a farm name, e.g.
// "Green Valley Farm" → "green-valley-farm.md".
func FileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "farm"
	}
	return slug + ".md"
}
