package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlex()
	c.normalizeSync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}
	for i := range c.Libraries {
		expanded, err := ExpandPath(c.Libraries[i].CardsDir)
		if err != nil {
			return fmt.Errorf("library %q: %w", c.Libraries[i].Name, err)
		}
		c.Libraries[i].CardsDir = expanded
		c.Libraries[i].Name = strings.TrimSpace(c.Libraries[i].Name)
	}
	return nil
}

func (c *Config) normalizePlex() {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.RequestTimeout <= 0 {
		c.Plex.RequestTimeout = defaultPlexRequestTimeout
	}
}

func (c *Config) normalizeSync() {
	c.Sync.Unwatched = strings.ToLower(strings.TrimSpace(c.Sync.Unwatched))
	if c.Sync.Workers <= 0 {
		c.Sync.Workers = defaultSyncWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
