// Package cards holds the domain model shared by the sync engine: spoil
// classes, the unwatched-episode policy, series and episode identity, the
// card directory scanner, and the renderer capability used to regenerate a
// card under a different spoil class.
//
// The package is deliberately free of transport and storage concerns; the
// loaded store and the Plex client both consume these types without owning
// them.
package cards
