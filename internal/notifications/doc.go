// Package notifications delivers sync lifecycle events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Per-category toggles let operators receive error alerts without the
// routine sync chatter.
package notifications
