// Package notifications delivers daemon refresh events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. The
// daemon reports refresh failures and recoveries through the Service
// interface, so alternative transports only need to satisfy it.
package notifications
