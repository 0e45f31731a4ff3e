package snapcache

import (
	"context"
	"fmt"
	"strings"

	"plutoiptv/internal/config"
	"plutoiptv/internal/feed"
)

// Store persists the most recent snapshot.
type Store interface {
	// Load returns the persisted snapshot, or nil when none exists.
	Load(ctx context.Context) (*feed.Snapshot, error)
	// Save replaces the persisted snapshot in one atomic step.
	Save(ctx context.Context, snap feed.Snapshot) error
	Clear(ctx context.Context) error
	Backend() string
	Path() string
	Close() error
}

// OpenStore returns the backend selected by cfg.Cache.Backend.
func OpenStore(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open snapshot store: nil config")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case "", config.CacheBackendFile:
		return NewFileStore(cfg.Cache.Path), nil
	case config.CacheBackendSQLite:
		return OpenSQLite(cfg.Cache.Path)
	default:
		return nil, fmt.Errorf("open snapshot store: unknown backend %q", cfg.Cache.Backend)
	}
}
