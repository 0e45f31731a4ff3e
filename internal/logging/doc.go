// Package logging assembles the structured slog loggers used across the feed
// pipeline, the cache and the HTTP surface.
//
// It owns the console and JSON handlers, resolves level and output routing
// from configuration, and exposes context-aware helpers so pipeline code can
// tag log lines with stage names and request correlation IDs. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
