// Package services defines the error markers and context helpers shared by
// the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and correlation identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper, so callers can tell fatal
//     failures (fetch exhaustion, unparseable feed) from reported ones (cache
//     writes, skipped channels) with errors.Is.
package services
