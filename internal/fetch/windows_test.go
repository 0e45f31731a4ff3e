package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"plutoiptv/internal/feed"
)

func TestWindowsAreContiguousAndHourAligned(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 42, 17, 0, time.FixedZone("EST", -5*3600))
	windows := Windows(now, 4, 6*time.Hour)
	if len(windows) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(windows))
	}
	wantStart := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	if !windows[0].Start.Equal(wantStart) {
		t.Fatalf("first window starts at %v, want %v", windows[0].Start, wantStart)
	}
	for i, w := range windows {
		if w.End.Sub(w.Start) != 6*time.Hour {
			t.Fatalf("window %d has length %v", i, w.End.Sub(w.Start))
		}
		if i > 0 && !w.Start.Equal(windows[i-1].End) {
			t.Fatalf("window %d does not start where %d ends", i, i-1)
		}
	}
	if Windows(now, 0, time.Hour) != nil {
		t.Fatal("expected no windows for zero count")
	}
}

func TestFetchAllReturnsWindowOrder(t *testing.T) {
	windows := Windows(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 3, time.Hour)
	fetcher := FetcherFunc(func(ctx context.Context, w feed.Window) (feed.Fragment, error) {
		// later windows finish first
		delay := time.Duration(3-w.Start.Hour()) * 10 * time.Millisecond
		time.Sleep(delay)
		return feed.Fragment{Channels: []feed.Channel{{ID: w.Start.Format("15")}}}, nil
	})

	fragments, err := FetchAll(context.Background(), fetcher, windows, 3)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	for i, fragment := range fragments {
		if !fragment.Window.Start.Equal(windows[i].Start) {
			t.Fatalf("fragment %d has window %v", i, fragment.Window)
		}
		if fragment.Channels[0].ID != windows[i].Start.Format("15") {
			t.Fatalf("fragment %d out of order: %s", i, fragment.Channels[0].ID)
		}
	}
}

func TestFetchAllFailsFast(t *testing.T) {
	windows := Windows(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 3, time.Hour)
	boom := errors.New("boom")
	fetcher := FetcherFunc(func(ctx context.Context, w feed.Window) (feed.Fragment, error) {
		if w.Start.Hour() == 1 {
			return feed.Fragment{}, boom
		}
		select {
		case <-ctx.Done():
			return feed.Fragment{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return feed.Fragment{}, nil
		}
	})

	start := time.Now()
	fragments, err := FetchAll(context.Background(), fetcher, windows, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if fragments != nil {
		t.Fatal("expected no partial fragments")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("expected remaining fetches to be cancelled")
	}
}
