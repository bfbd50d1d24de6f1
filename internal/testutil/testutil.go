// Package testutil provides shared test helpers for catalog directories and session databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/parser"
	"github.com/starford/harvest/internal/sessions"
	"github.com/starford/harvest/internal/storage"
)

// TestSessions creates a temporary session database that is automatically cleaned up.
func TestSessions(t *testing.T) *sessions.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "harvest-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := sessions.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCatalogDir creates a temporary catalog directory holding the seed farms
// as farm files.
func TestCatalogDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range catalog.Seed() {
		data, err := parser.Render(f)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Write(catalog.FileName(f.Name), data); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
