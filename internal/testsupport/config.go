package testsupport

import (
	"path/filepath"
	"testing"

	"cardsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Plex.URL = "http://plex.test:32400"
	cfg.Plex.Token = "test-token"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLibrary appends a library entry to the test config.
func WithLibrary(name, cardsDir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Libraries = append(cfg.Libraries, config.Library{Name: name, CardsDir: cardsDir})
	}
}

// WithUnwatched sets the unwatched action on the test config.
func WithUnwatched(action string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.Unwatched = action
	}
}
