package pipeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"plutoiptv/internal/category"
	"plutoiptv/internal/config"
	"plutoiptv/internal/fetch"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/render"
	"plutoiptv/internal/schedule"
	"plutoiptv/internal/services"
	"plutoiptv/internal/snapcache"
)

// Pipeline ties the stages together for one configuration.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  fetch.Fetcher
	store    snapcache.Store
	cache    *snapcache.Cache
	mapper   *category.Mapper
	excluded *regexp.Regexp
	render   render.Options
	ids      render.IDSource
	now      func() time.Time

	statsMu   sync.Mutex
	lastMerge *schedule.Result

	publishMu sync.Mutex
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithFetcher replaces the HTTP feed client.
func WithFetcher(fetcher fetch.Fetcher) Option {
	return func(p *Pipeline) {
		if fetcher != nil {
			p.fetcher = fetcher
		}
	}
}

// WithStore replaces the snapshot store selected by the config.
func WithStore(store snapcache.Store) Option {
	return func(p *Pipeline) {
		if store != nil {
			p.store = store
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides time.Now for windows and cache freshness.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDSource fixes the playlist device and session identifiers.
func WithIDSource(ids render.IDSource) Option {
	return func(p *Pipeline) {
		p.ids = ids
	}
}

// New builds a pipeline from cfg. The caller must Close it.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "config is required", nil)
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewNop(),
		now:    time.Now,
		render: render.Options{
			StartNumber: cfg.Channels.StartNumber,
			Conflicting: cfg.Channels.Conflicting,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	base := p.logger
	p.logger = logging.NewComponentLogger(base, "pipeline")

	if pattern := cfg.Channels.ExcludedSlugPattern; pattern != "" {
		excluded, err := regexp.Compile(pattern)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "invalid excluded_slug_pattern", err)
		}
		p.excluded = excluded
	}

	table, err := loadTable(cfg.Categories.TablePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "load category table", err)
	}
	p.mapper = category.NewMapper(table)

	if p.fetcher == nil {
		p.fetcher = fetch.NewClient(fetch.ConfigFrom(cfg), fetch.WithLogger(logging.NewComponentLogger(base, "fetch")))
	}
	if p.store == nil {
		store, err := snapcache.OpenStore(cfg)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "open snapshot store", err)
		}
		p.store = store
	}
	p.cache = snapcache.New(p.store, cfg.CacheTTL(), p.fetchAndMerge,
		snapcache.WithClock(p.now),
		snapcache.WithLogger(base))

	return p, nil
}

// Close releases the snapshot store.
func (p *Pipeline) Close() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Cache exposes the snapshot cache for status and maintenance commands.
func (p *Pipeline) Cache() *snapcache.Cache {
	return p.cache
}

func loadTable(path string) (*category.Table, error) {
	if path == "" {
		return category.Default()
	}
	table, err := category.Load(path)
	if err != nil {
		return nil, fmt.Errorf("category table %s: %w", path, err)
	}
	return table, nil
}
