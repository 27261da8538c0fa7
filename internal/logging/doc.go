// Package logging builds the slog loggers used across cardsync. New
// constructs a logger from explicit options; NewFromConfig layers the
// configured log directory on top of stdout. Attr helpers keep call sites
// free of direct slog imports.
package logging
