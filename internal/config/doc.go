// Package config loads, normalizes, and validates the cardsync TOML
// configuration. Load resolves the file path (explicit flag, then
// ~/.config/cardsync/config.toml, then ./cardsync.toml), applies defaults,
// expands home-relative paths, and rejects invalid values before anything
// else starts. Fields invalid at load time never reach the engine.
package config
