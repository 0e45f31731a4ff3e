// Package fetch retrieves schedule fragments from the upstream channel feed.
//
// The horizon is split into contiguous hour-aligned windows. Client fetches
// one window per request, retrying timeouts and connection resets with a
// fixed delay, and FetchAll fans the windows out over a bounded errgroup,
// returning fragments in window order or the first failure.
package fetch
