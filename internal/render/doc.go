// Package render serializes the deduplicated channel set into the two
// published documents: an M3U playlist with per-channel stream URLs and an
// XMLTV programme guide.
//
// Channels missing fields a renderer needs are left out of that document
// only and reported as Skips.
package render
