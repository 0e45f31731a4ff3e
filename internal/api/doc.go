// Package api defines the wire-format types served by the daemon's HTTP
// endpoints and the converters that build them from pipeline and cache
// state.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds and
// durations are reported in milliseconds, so JavaScript consumers can use
// them without conversion.
package api
