// Package loaded persists the fingerprint of every card known to be on the
// Plex server: one row per (library, series, season, episode) carrying the
// byte size and spoil class of the last successfully uploaded card.
//
// Rows are never deleted during a sync pass; a remote card deletion is
// recorded by resetting filesize to zero, which the change filter treats as
// "must re-upload". Every mutation is a single-row statement, so a crash
// mid-pass leaves the store consistent and a later pass self-heals.
//
// Open applies the embedded schema, takes a cross-process file lock beside
// the database, and performs a best-effort one-time import of the legacy
// loaded_cards.yml map. Schema changes bump schemaVersion in schema.go.
package loaded
