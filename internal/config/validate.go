package config

import (
	"errors"
	"fmt"
	"strings"

	"cardsync/internal/cards"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateLibraries(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		return errors.New("plex.url must be set")
	}
	if !strings.HasPrefix(c.Plex.URL, "http://") && !strings.HasPrefix(c.Plex.URL, "https://") {
		return fmt.Errorf("plex.url %q must be an http(s) URL", c.Plex.URL)
	}
	return nil
}

func (c *Config) validateLibraries() error {
	seen := make(map[string]struct{}, len(c.Libraries))
	for _, lib := range c.Libraries {
		if lib.Name == "" {
			return errors.New("libraries entries require a name")
		}
		if strings.TrimSpace(lib.CardsDir) == "" {
			return fmt.Errorf("library %q requires cards_dir", lib.Name)
		}
		if _, dup := seen[lib.Name]; dup {
			return fmt.Errorf("library %q configured twice", lib.Name)
		}
		seen[lib.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateSync() error {
	if _, err := cards.ParseUnwatchedAction(c.Sync.Unwatched); err != nil {
		return fmt.Errorf("sync.unwatched: %w", err)
	}
	if c.Sync.Workers < 1 || c.Sync.Workers > 32 {
		return fmt.Errorf("sync.workers must be between 1 and 32, got %d", c.Sync.Workers)
	}
	return nil
}
