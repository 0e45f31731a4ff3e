package api

import (
	"testing"
	"time"

	"plutoiptv/internal/feed"
	"plutoiptv/internal/pipeline"
	"plutoiptv/internal/render"
	"plutoiptv/internal/snapcache"
)

func TestNewHealth(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	empty := NewHealth(now, nil)
	if empty.Status != StatusOK || empty.Cache.HasData || empty.Cache.AgeMS != nil {
		t.Fatalf("unexpected empty health %+v", empty)
	}
	if empty.Timestamp != "2026-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", empty.Timestamp)
	}

	snap := &feed.Snapshot{CapturedAt: now.Add(-90 * time.Second)}
	warm := NewHealth(now, snap)
	if !warm.Cache.HasData || warm.Cache.AgeMS == nil || *warm.Cache.AgeMS != 90000 {
		t.Fatalf("unexpected warm health %+v", warm)
	}
}

func TestFromDiagnosticsCountsSkipsPerRenderer(t *testing.T) {
	d := pipeline.Diagnostics{
		CacheSource:      snapcache.SourceFetched,
		Published:        4,
		NumberCollisions: 1,
		Skips: []render.Skip{
			{Renderer: render.RendererPlaylist, Slug: "a"},
			{Renderer: render.RendererPlaylist, Slug: "b"},
			{Renderer: render.RendererGuide, Slug: "c"},
		},
	}
	got := FromDiagnostics(d)
	if got.CacheSource != "fetched" || got.Published != 4 || got.NumberCollisions != 1 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.PlaylistSkips != 2 || got.GuideSkips != 1 {
		t.Fatalf("unexpected skip counts %+v", got)
	}
	if got.CapturedAt != "" {
		t.Fatalf("zero capture time must be omitted, got %q", got.CapturedAt)
	}
}

func TestFromCacheStatus(t *testing.T) {
	st := snapcache.Status{
		Backend:    "sqlite",
		Path:       "/tmp/cache.db",
		HasData:    true,
		Fresh:      true,
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Age:        2 * time.Minute,
		Channels:   12,
	}
	got := FromCacheStatus(st)
	if got.AgeMS != 120000 || got.Channels != 12 || got.CapturedAt != "2026-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected cache status %+v", got)
	}
}
