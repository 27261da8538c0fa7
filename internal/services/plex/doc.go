// Package plex exposes the narrow slice of the Plex Media Server API the
// sync engine consumes: library section lookup, series lookup by GUID or
// title, episode listing with watch state, and poster upload/removal.
//
// Lookup misses surface as ErrNotFound so callers can distinguish "the
// server answered and the object is absent" from transport failures; only
// the former participates in the resolver's fallback chain.
package plex
