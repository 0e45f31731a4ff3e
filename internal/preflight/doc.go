// Package preflight provides readiness checks for the filesystem paths and
// the upstream feed that plutoiptv depends on.
//
// The CLI "plutoiptv status" command runs RunAll and prints one line per
// check. Individual checks are exported so the daemon and tests can run
// them on their own.
package preflight
