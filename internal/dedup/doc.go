// Package dedup filters the merged channel set down to broadcastable
// channels with unique numbers, slugs and names.
//
// Filter runs three stages: an eligibility filter (stitched channels whose
// slug is not an administrative placeholder), zero-number remediation from a
// reserved block, and collision resolution by number, then slug, then folded
// name. Every decision is recorded in a Report; collisions never fail a run.
// Analyze reports the same duplicates without resolving them.
package dedup
