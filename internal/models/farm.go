// Package models defines the domain types for Harvest.
package models

import "strings"

// Farm is one entry of the farm catalog.
type Farm struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description,omitempty"`
	DistanceLabel string   `json:"distance" yaml:"distance,omitempty"`
	Rating        float64  `json:"rating" yaml:"rating,omitempty"`
	ImageURL      string   `json:"image_url" yaml:"image,omitempty"`
	Tags          []string `json:"tags" yaml:"tags,omitempty"`
	Location      string   `json:"location" yaml:"location,omitempty"`
	Contact       string   `json:"contact" yaml:"contact,omitempty"`
	DeliveryAreas []string `json:"delivery_areas" yaml:"delivery_areas,omitempty"`
	Path          string   `json:"path,omitempty" yaml:"-"`
}

// DeliveryAreasLabel joins the delivery areas for display.
func (f Farm) DeliveryAreasLabel() string {
	return strings.Join(f.DeliveryAreas, ", ")
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}
