package testsupport

import (
	"path/filepath"
	"testing"

	"plutoiptv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retry delays are zeroed and the server binds to an ephemeral port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Feed.BaseURL = "http://127.0.0.1:1/v2/channels"
	cfgVal.Feed.RetryDelaySeconds = 0
	cfgVal.Feed.TimeoutSeconds = 5
	cfgVal.Output.Dir = filepath.Join(base, "output")
	cfgVal.Cache.Path = filepath.Join(cfgVal.Output.Dir, "cache.json")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.AutoRefresh = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFeedURL points the feed at a test server.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.BaseURL = url
	}
}

// WithSQLiteCache switches the snapshot backend to SQLite.
func WithSQLiteCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = config.CacheBackendSQLite
		b.cfg.Cache.Path = filepath.Join(b.cfg.Output.Dir, "cache.db")
	}
}

// WithWindows overrides the fetch window layout.
func WithWindows(count, hours int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.WindowCount = count
		b.cfg.Feed.WindowHours = hours
		b.cfg.Feed.Concurrency = count
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Output.Dir)
}
