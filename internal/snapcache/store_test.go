package snapcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"plutoiptv/internal/feed"
	"plutoiptv/internal/testsupport"
)

func sampleSnapshot() feed.Snapshot {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return feed.Snapshot{
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Channels: []feed.Channel{
			testsupport.NewChannel("a", "Alpha", "alpha", 5,
				testsupport.WithProgrammes(testsupport.NewProgramme(start, "Show"))),
			testsupport.NewChannel("b", "Beta", "beta", 6),
		},
	}
}

func TestStoresRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sqlite, err := OpenSQLite(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	stores := map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "cache.json")),
		"sqlite": sqlite,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			empty, err := store.Load(ctx)
			if err != nil || empty != nil {
				t.Fatalf("expected empty store, got %v %v", empty, err)
			}

			want := sampleSnapshot()
			if err := store.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil || got == nil {
				t.Fatalf("Load: %v %v", got, err)
			}
			if !got.CapturedAt.Equal(want.CapturedAt) {
				t.Fatalf("captured_at: got %v want %v", got.CapturedAt, want.CapturedAt)
			}
			if len(got.Channels) != 2 || got.Channels[0].Slug != "alpha" || got.Channels[0].Number.Int() != 5 {
				t.Fatalf("unexpected channels %+v", got.Channels)
			}
			if len(got.Channels[0].Timelines) != 1 || !got.Channels[0].Timelines[0].Start.Equal(want.Channels[0].Timelines[0].Start) {
				t.Fatalf("timelines not preserved: %+v", got.Channels[0].Timelines)
			}

			replacement := feed.Snapshot{CapturedAt: want.CapturedAt.Add(time.Hour), Channels: want.Channels[:1]}
			if err := store.Save(ctx, replacement); err != nil {
				t.Fatalf("Save replacement: %v", err)
			}
			got, err = store.Load(ctx)
			if err != nil || len(got.Channels) != 1 || !got.CapturedAt.Equal(replacement.CapturedAt) {
				t.Fatalf("replacement not loaded: %+v %v", got, err)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			cleared, err := store.Load(ctx)
			if err != nil || cleared != nil {
				t.Fatalf("expected empty store after clear, got %v %v", cleared, err)
			}
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "cache.json"))
	if err := store.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "cache.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSQLiteReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load(context.Background())
	if err != nil || got == nil || len(got.Channels) != 2 {
		t.Fatalf("expected persisted snapshot, got %+v %v", got, err)
	}
}

func TestOpenStoreSelectsBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := OpenStore(cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if store.Backend() != "file" {
		t.Fatalf("expected file backend, got %s", store.Backend())
	}

	cfg = testsupport.NewConfig(t, testsupport.WithSQLiteCache())
	store, err = OpenStore(cfg)
	if err != nil {
		t.Fatalf("OpenStore sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if store.Backend() != "sqlite" || filepath.Base(store.Path()) != "cache.db" {
		t.Fatalf("unexpected store %s %s", store.Backend(), store.Path())
	}
}
