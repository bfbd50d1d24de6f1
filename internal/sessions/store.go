package sessions

import (
	"context"
	"time"

	"github.com/starford/harvest/internal/catalog"
)

// Store defines the session persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Store interface {
	Create(ctx context.Context, state catalog.State) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Mutate(ctx context.Context, id string, fn func(catalog.State) (catalog.State, error)) (*Session, error)
	Delete(ctx context.Context, id string) error
	Sweep(ctx context.Context, idleSince time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
