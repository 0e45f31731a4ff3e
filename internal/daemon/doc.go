// Package daemon runs plutoiptv as a long-lived HTTP service.
//
// It wires configuration and the pipeline into a single lifecycle with
// flock-based locking on the output directory, so two instances never
// publish into the same place. On start it generates both documents once,
// then optionally refreshes them on a fixed interval, and serves them
// together with health, refresh, duplicate analysis and channel listing
// endpoints. The first failed refresh after a success, and the first success
// after a failure, are pushed through the notifications service.
package daemon
