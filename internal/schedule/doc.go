// Package schedule merges per-window fragments into a single channel set.
//
// Channels are keyed by their upstream id. The first occurrence inserts a
// copy of the channel and later occurrences append their programmes, in
// window order. Exact duplicate programmes and programmes that end before
// they start are dropped and counted. The merged set is sorted by channel
// number with unnumbered channels last.
package schedule
