package snapcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"plutoiptv/internal/feed"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/services"
)

// Source names where a Get result came from.
type Source string

const (
	SourceMemory    Source = "memory"
	SourcePersisted Source = "persisted"
	SourceFetched   Source = "fetched"
)

const refreshKey = "refresh"

// Loader runs the fetch+merge stage and returns the merged channel set.
type Loader func(ctx context.Context) ([]feed.Channel, error)

// Result is a snapshot together with its provenance. WriteErr is set, and
// wraps services.ErrCacheWrite, when a fetched snapshot could not be
// persisted; the snapshot is still usable for the current run.
type Result struct {
	Snapshot *feed.Snapshot
	Source   Source
	WriteErr error
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache serves the merged snapshot with a TTL.
type Cache struct {
	store  Store
	load   Loader
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	group  singleflight.Group

	mu        sync.RWMutex
	current   *feed.Snapshot
	notBefore time.Time
}

// New returns a cache over store that calls load on a miss.
func New(store Store, ttl time.Duration, load Loader, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		load:   load,
		ttl:    ttl,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "snapcache")
	return c
}

// Get returns a snapshot younger than the TTL, running fetch+merge only when
// neither memory nor the store holds one. A failed fetch leaves any previous
// snapshot untouched and returns the error.
func (c *Cache) Get(ctx context.Context) (Result, error) {
	if snap := c.memory(); snap != nil {
		c.logger.Debug("snapshot served from memory",
			logging.String(logging.FieldEventType, "snapshot_hit"),
			logging.Duration("age", c.now().Sub(snap.CapturedAt)))
		return Result{Snapshot: snap, Source: SourceMemory}, nil
	}

	// The shared refresh outlives any one caller; each caller only stops waiting.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.refresh(loadCtx)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		if r.Shared {
			c.logger.Debug("joined in-flight snapshot refresh",
				logging.String(logging.FieldEventType, "snapshot_refresh_shared"))
		}
		return r.Val.(Result), nil
	}
}

// Invalidate drops the in-memory snapshot and makes the next Get ignore any
// persisted snapshot not captured after now.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.notBefore = c.now()
	c.logger.Debug("snapshot invalidated",
		logging.String(logging.FieldEventType, "snapshot_invalidated"))
}

// Peek returns the in-memory snapshot regardless of age, or nil.
func (c *Cache) Peek() *feed.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Clear invalidates the cache and removes the persisted snapshot.
func (c *Cache) Clear(ctx context.Context) error {
	c.Invalidate()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear snapshot store: %w", err)
	}
	return nil
}

// Status describes the newest snapshot known to the cache.
type Status struct {
	Backend    string
	Path       string
	HasData    bool
	Fresh      bool
	CapturedAt time.Time
	Age        time.Duration
	Channels   int
}

// Status reports on the in-memory snapshot, falling back to the store.
func (c *Cache) Status(ctx context.Context) (Status, error) {
	st := Status{Backend: c.store.Backend(), Path: c.store.Path()}
	snap := c.Peek()
	if snap == nil {
		loaded, err := c.store.Load(ctx)
		if err != nil {
			return st, err
		}
		snap = loaded
	}
	if snap == nil {
		return st, nil
	}
	now := c.now()
	st.HasData = true
	st.CapturedAt = snap.CapturedAt
	st.Age = now.Sub(snap.CapturedAt)
	st.Fresh = snap.Fresh(now, c.ttl)
	st.Channels = len(snap.Channels)
	return st, nil
}

func (c *Cache) memory() *feed.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current.Fresh(c.now(), c.ttl) {
		return c.current
	}
	return nil
}

func (c *Cache) refresh(ctx context.Context) (Result, error) {
	if snap := c.memory(); snap != nil {
		return Result{Snapshot: snap, Source: SourceMemory}, nil
	}

	if snap := c.persisted(ctx); snap != nil {
		c.install(snap)
		c.logger.Info("snapshot loaded from store",
			logging.String(logging.FieldEventType, "snapshot_adopted"),
			logging.String("backend", c.store.Backend()),
			logging.Int("channels", len(snap.Channels)))
		return Result{Snapshot: snap, Source: SourcePersisted}, nil
	}

	start := c.now()
	channels, err := c.load(ctx)
	if err != nil {
		return Result{}, err
	}
	snap := &feed.Snapshot{CapturedAt: c.now(), Channels: channels}

	if err := c.store.Save(ctx, *snap); err != nil {
		writeErr := services.Wrap(services.ErrCacheWrite, "snapcache", "save", c.store.Path(), err)
		logging.WarnWithContext(c.logger, "snapshot not persisted", "snapshot_persist_failed",
			logging.Error(err),
			logging.String("backend", c.store.Backend()),
			logging.String(logging.FieldErrorHint, "check permissions on the cache path"),
			logging.String(logging.FieldImpact, "next run fetches the feed again"))
		return Result{Snapshot: snap, Source: SourceFetched, WriteErr: writeErr}, nil
	}

	c.install(snap)
	c.logger.Info("snapshot refreshed",
		logging.String(logging.FieldEventType, "snapshot_refreshed"),
		logging.Int("channels", len(channels)),
		logging.Duration("elapsed", c.now().Sub(start)))
	return Result{Snapshot: snap, Source: SourceFetched}, nil
}

func (c *Cache) persisted(ctx context.Context) *feed.Snapshot {
	snap, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logging.WarnWithContext(c.logger, "persisted snapshot unreadable", "snapshot_load_failed",
			logging.Error(err),
			logging.String("backend", c.store.Backend()),
			logging.String(logging.FieldErrorHint, "run 'plutoiptv cache clear' if this persists"),
			logging.String(logging.FieldImpact, "feed will be fetched"))
		return nil
	}
	if snap == nil {
		return nil
	}

	c.mu.RLock()
	notBefore := c.notBefore
	c.mu.RUnlock()
	if !notBefore.IsZero() && !snap.CapturedAt.After(notBefore) {
		return nil
	}
	if !snap.Fresh(c.now(), c.ttl) {
		return nil
	}
	return snap
}

func (c *Cache) install(snap *feed.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = snap
}
