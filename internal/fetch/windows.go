package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"plutoiptv/internal/feed"
)

// Fetcher retrieves the fragment for one window.
type Fetcher interface {
	FetchWindow(ctx context.Context, window feed.Window) (feed.Fragment, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, window feed.Window) (feed.Fragment, error)

func (f FetcherFunc) FetchWindow(ctx context.Context, window feed.Window) (feed.Fragment, error) {
	return f(ctx, window)
}

// Windows splits count*length starting at now, truncated to the hour, into
// contiguous non-overlapping windows.
func Windows(now time.Time, count int, length time.Duration) []feed.Window {
	if count <= 0 || length <= 0 {
		return nil
	}
	start := now.UTC().Truncate(time.Hour)
	windows := make([]feed.Window, count)
	for i := range windows {
		end := start.Add(length)
		windows[i] = feed.Window{Start: start, End: end}
		start = end
	}
	return windows
}

// FetchAll fetches every window with at most limit requests in flight. The
// first failure cancels the remaining fetches and is returned. Fragments are
// returned in the order of windows regardless of completion order.
func FetchAll(ctx context.Context, fetcher Fetcher, windows []feed.Window, limit int) ([]feed.Fragment, error) {
	if limit <= 0 || limit > len(windows) {
		limit = len(windows)
	}
	fragments := make([]feed.Fragment, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, window := range windows {
		g.Go(func() error {
			fragment, err := fetcher.FetchWindow(gctx, window)
			if err != nil {
				return err
			}
			fragment.Window = window
			fragments[i] = fragment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fragments, nil
}
