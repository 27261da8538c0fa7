// Package main hosts the cardsync CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into sync
// passes against the configured Plex server, loaded-card store maintenance,
// and configuration scaffolding. It centralizes configuration resolution and
// store lifecycle so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
