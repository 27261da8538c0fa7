package testsupport

import (
	"testing"

	"cardsync/internal/config"
	"cardsync/internal/loaded"
)

// MustOpenStore opens a loaded.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *loaded.Store {
	t.Helper()

	store, err := loaded.Open(cfg)
	if err != nil {
		t.Fatalf("loaded.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
