// Package pipeline runs the feed end to end: fetch the configured windows,
// merge them into a snapshot (through the snapshot cache), deduplicate,
// render the playlist and the guide, and publish both files.
//
// A Pipeline is the explicit run context. It owns its collaborators and
// holds no package-level state, so tests can build several side by side.
package pipeline
