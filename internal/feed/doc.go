// Package feed holds the record shapes exchanged with the upstream channel
// feed: channels with their timelines, episodes and series, the fetch windows
// and fragments they arrive in, and the snapshot the cache persists.
//
// Optional upstream values are typed explicitly (pointers, Number) so that a
// missing field is distinguishable from a zero one.
package feed
