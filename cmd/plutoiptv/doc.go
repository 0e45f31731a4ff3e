// Package main hosts the plutoiptv CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the pipeline once (run), serves the
// published documents over HTTP (serve), inspects the channel line-up and
// its duplicates, manages the snapshot cache, scaffolds configuration, and
// reports readiness (status). It centralizes configuration resolution and
// logging setup so subcommands can focus on output.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through dedicated commands or flags.
package main
