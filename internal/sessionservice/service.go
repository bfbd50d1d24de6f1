// Package sessionservice coordinates the catalog source and the session store.
package sessionservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/harvest/internal/apperr"
	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/loader"
	"github.com/starford/harvest/internal/metrics"
	"github.com/starford/harvest/internal/models"
	"github.com/starford/harvest/internal/sessions"
)

// Change kinds passed to a ChangeHook.
const (
	ChangeUpdated = "updated"
	ChangeEnded   = "ended"
)

// ChangeHook is called after a session was updated or ended.
type ChangeHook func(kind, id string)

// SessionView is the response payload for a session: its identity plus the
// rendered view of its current state.
type SessionView struct {
	ID string `json:"id"`
	catalog.View
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates catalog and session operations.
type Service struct {
	src      *loader.Source
	store    sessions.Store
	onChange ChangeHook
}

// NewService creates a new session service. hook may be nil.
func NewService(src *loader.Source, store sessions.Store, hook ChangeHook) *Service {
	return &Service{src: src, store: store, onChange: hook}
}

// Catalog returns the current catalog snapshot.
func (s *Service) Catalog() *catalog.Catalog {
	return s.src.Catalog()
}

// Search runs a stateless filter over the current catalog.
func (s *Service) Search(_ context.Context, query string, tags []string) catalog.View {
	state := catalog.State{Query: query, Tags: catalog.NewTagSet(tags...), Mode: catalog.List}
	v := catalog.Present(s.src.Catalog(), state)
	metrics.ObserveFilter("search", v.Matched)
	return v
}

// Farm returns the farm with the given name.
func (s *Service) Farm(_ context.Context, name string) (models.Farm, error) {
	f, ok := s.src.Catalog().Find(name)
	if !ok {
		return models.Farm{}, apperr.ErrNotFound
	}
	return f, nil
}

// Tags returns the tag vocabulary of the current catalog.
func (s *Service) Tags(_ context.Context) []string {
	return s.src.Catalog().Vocabulary()
}

// Start creates a session in the initial state.
func (s *Service) Start(ctx context.Context) (*SessionView, error) {
	sess, err := s.store.Create(ctx, catalog.NewState())
	if err != nil {
		return nil, err
	}
	metrics.SessionEvent("started")
	return s.present(sess), nil
}

// View renders the current state of a session against the current catalog.
func (s *Service) View(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(sess), nil
}

// Apply runs ev through catalog.Update and stores the resulting snapshot.
func (s *Service) Apply(ctx context.Context, id string, ev catalog.Event) (*SessionView, error) {
	sess, err := s.store.Mutate(ctx, id, func(st catalog.State) (catalog.State, error) {
		return catalog.Update(st, ev)
	})
	if err != nil {
		return nil, err
	}
	metrics.SessionEvent(ChangeUpdated)
	s.notify(ChangeUpdated, id)
	return s.present(sess), nil
}

// End discards a session.
func (s *Service) End(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.SessionEvent(ChangeEnded)
	s.notify(ChangeEnded, id)
	return nil
}

// SweepIdle ends sessions idle for longer than ttl.
func (s *Service) SweepIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.store.Sweep(ctx, time.Now().Add(-ttl))
}

// RunSweeper calls SweepIdle every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepIdle(ctx, ttl)
			if err != nil {
				logger.Warn("sweeper: sweep failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				logger.Info("sweeper: ended idle sessions", slog.Int64("count", n))
			}
		}
	}
}

func (s *Service) present(sess *sessions.Session) *SessionView {
	v := catalog.Present(s.src.Catalog(), sess.State)
	metrics.ObserveFilter("session", v.Matched)
	return &SessionView{
		ID:        sess.ID,
		View:      v,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

func (s *Service) notify(kind, id string) {
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}
