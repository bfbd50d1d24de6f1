// Package loader builds catalog snapshots from the catalog directory and
// keeps the current snapshot up to date.
package loader

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/checksum"
	"github.com/starford/harvest/internal/models"
	"github.com/starford/harvest/internal/parser"
	"github.com/starford/harvest/internal/storage"
)

// Load reads every farm file from store and builds a catalog ordered by path.
// Files that fail to parse are logged and skipped.
func Load(store storage.Provider, logger *slog.Logger) (*catalog.Catalog, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("loader: list: %w", err)
	}

	farms := make([]models.Farm, 0, len(metas))
	sums := make(map[string]string, len(metas))
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("load: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		f, err := parser.Parse(data)
		if err != nil {
			logger.Warn("load: skipping malformed farm", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		f.Path = m.Path
		farms = append(farms, *f)
		sums[m.Path] = m.Checksum
	}

	return catalog.New(farms, checksum.Combine(sums)), nil
}

// Source holds the current catalog snapshot. Readers never block; Reload
// publishes a new snapshot atomically and never mutates a published one.
type Source struct {
	store       storage.Provider
	logger      *slog.Logger
	seedOnEmpty bool

	mu  sync.Mutex // serialises reloads
	cur atomic.Pointer[catalog.Catalog]
}

// NewSource loads the initial snapshot from store. When the directory holds no
// farms and seedOnEmpty is set, the built-in catalog is served instead.
func NewSource(store storage.Provider, logger *slog.Logger, seedOnEmpty bool) (*Source, error) {
	s := &Source{store: store, logger: logger, seedOnEmpty: seedOnEmpty}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticSource serves a fixed catalog. Reload is a no-op.
func NewStaticSource(c *catalog.Catalog) *Source {
	s := &Source{}
	s.cur.Store(c)
	return s
}

// Catalog returns the current snapshot.
func (s *Source) Catalog() *catalog.Catalog {
	return s.cur.Load()
}

// Version returns the version of the current snapshot.
func (s *Source) Version() string {
	return s.Catalog().Version()
}

// Reload rebuilds the snapshot from disk and reports whether its version changed.
func (s *Source) Reload() (bool, error) {
	if s.store == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Load(s.store, s.logger)
	if err != nil {
		return false, err
	}
	if next.Len() == 0 && s.seedOnEmpty {
		next = catalog.SeedCatalog()
	}

	prev := s.cur.Load()
	if prev != nil && prev.Version() == next.Version() {
		return false, nil
	}
	s.cur.Store(next)
	s.logger.Info("catalog loaded",
		slog.Int("farms", next.Len()),
		slog.String("version", next.Version()))
	return true, nil
}
