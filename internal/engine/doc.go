// Package engine synchronizes locally rendered title cards with a Plex
// server. A library pass resolves the remote library once, then handles each
// series independently: the spoiler pass reconciles every episode's required
// spoil class against the loaded store (deleting remote cards and forcing
// reloads on class changes), the change filter reduces the series to the
// episodes whose artifacts differ from what Plex last received, and the
// executor drains that work set through a bounded worker pool with
// per-episode retry.
//
// Ordering matters: the spoiler pass must finish writing its forced
// invalidations before the filter reads the store, otherwise a class change
// would not force a reload. The executor never touches remote episodes
// outside the work set, and a failed upload leaves the store unchanged so
// the next pass retries it.
package engine
