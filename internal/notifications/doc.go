// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Completion and error toggles in the config decide which event
// classes are delivered, so the worker can report every outcome without
// knowing whether anyone is listening.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the simple Service interface.
package notifications
