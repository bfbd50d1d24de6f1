// Package storage defines the catalog directory abstraction.
package storage

import "github.com/starford/harvest/internal/models"

// Provider is the interface for catalog file operations.
type Provider interface {
	// Root returns the absolute path of the catalog directory.
	Root() string
	// List returns metadata for every .md file under dir (relative to the root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}
