package pipeline

import (
	"context"
	"slices"
	"time"

	"plutoiptv/internal/dedup"
	"plutoiptv/internal/feed"
	"plutoiptv/internal/fetch"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/render"
	"plutoiptv/internal/schedule"
	"plutoiptv/internal/services"
	"plutoiptv/internal/snapcache"
)

// Output holds both rendered documents and the channels they describe.
type Output struct {
	Playlist    []byte
	Guide       []byte
	Channels    []feed.Channel
	Diagnostics Diagnostics
}

// Run produces both documents, reusing the cached snapshot when it is
// younger than the TTL. Nothing is written to the output directory.
func (p *Pipeline) Run(ctx context.Context) (*Output, error) {
	started := p.now()
	res, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	diag := Diagnostics{
		CacheSource: res.Source,
		CapturedAt:  res.Snapshot.CapturedAt,
		RawChannels: len(res.Snapshot.Channels),
	}
	if res.WriteErr != nil {
		diag.CacheWriteError = res.WriteErr.Error()
	}
	if res.Source == snapcache.SourceFetched {
		if merged := p.takeMergeStats(); merged != nil {
			diag.Windows = p.cfg.Feed.WindowCount
			diag.DuplicateProgrammes = merged.DuplicateProgrammes
			diag.InvalidProgrammes = merged.InvalidProgrammes
		}
	}

	channels, report := p.filter(ctx, res.Snapshot.Channels)
	diag.Dedup = report
	diag.Ineligible = report.Ineligible
	diag.Published = report.Kept
	diag.NumberCollisions = report.Count(dedup.KindNumber)
	diag.NameCollisions = report.Count(dedup.KindName)
	diag.SlugCollisions = report.Count(dedup.KindSlug)
	diag.Reassigned = len(report.Reassignments)

	renderCtx := services.WithStage(ctx, "render")
	playlist := render.NewPlaylistRenderer(p.render, p.ids).Render(channels)
	guide, err := render.NewGuideRenderer(p.render, p.mapper, time.UTC).Render(channels)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "guide", "encode xmltv", err)
	}
	diag.PlaylistChannels = playlist.Channels
	diag.GuideChannels = guide.Channels
	diag.Skips = slices.Concat(playlist.Skips, guide.Skips)

	logger := logging.WithContext(renderCtx, p.logger)
	for _, skip := range diag.Skips {
		logger.Debug("channel skipped",
			logging.String(logging.FieldEventType, "render_skip"),
			logging.String("renderer", skip.Renderer),
			logging.String(logging.FieldChannelSlug, skip.Slug),
			logging.String("reason", skip.Reason))
	}
	logger.Info("documents rendered",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("cache_source", string(diag.CacheSource)),
		logging.Int("channels", diag.Published),
		logging.Int("collisions", diag.Collisions()),
		logging.Int("skips", len(diag.Skips)),
		logging.Duration("elapsed", p.now().Sub(started)))

	return &Output{
		Playlist:    playlist.Body,
		Guide:       guide.Body,
		Channels:    channels,
		Diagnostics: diag,
	}, nil
}

// Refresh invalidates the cached snapshot and then runs.
func (p *Pipeline) Refresh(ctx context.Context) (*Output, error) {
	p.cache.Invalidate()
	return p.Run(ctx)
}

func (p *Pipeline) snapshot(ctx context.Context) (snapcache.Result, error) {
	ctx = services.WithStage(ctx, "fetch")
	res, err := p.cache.Get(ctx)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "feed unavailable", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check feed.base_url and network access"),
			logging.String(logging.FieldImpact, "no documents produced; published files left unchanged"))
		return snapcache.Result{}, err
	}
	return res, nil
}

// fetchAndMerge is the cache loader: fetch every window, then merge.
func (p *Pipeline) fetchAndMerge(ctx context.Context) ([]feed.Channel, error) {
	windows := fetch.Windows(p.now(), p.cfg.Feed.WindowCount, p.cfg.WindowLength())
	if len(windows) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "windows", "no fetch windows configured", nil)
	}
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("fetching feed",
		logging.String(logging.FieldEventType, "fetch_start"),
		logging.Int("windows", len(windows)),
		logging.String("from", windows[0].Start.Format(time.RFC3339)),
		logging.String("to", windows[len(windows)-1].End.Format(time.RFC3339)))

	fragments, err := fetch.FetchAll(ctx, p.fetcher, windows, p.cfg.Feed.Concurrency)
	if err != nil {
		return nil, err
	}

	merged := schedule.Merge(fragments)
	p.statsMu.Lock()
	p.lastMerge = &merged
	p.statsMu.Unlock()

	logger.Info("feed merged",
		logging.String(logging.FieldEventType, "merge_complete"),
		logging.Int("channels", len(merged.Channels)),
		logging.Int("duplicate_programmes", merged.DuplicateProgrammes),
		logging.Int("invalid_programmes", merged.InvalidProgrammes))
	return merged.Channels, nil
}

func (p *Pipeline) takeMergeStats() *schedule.Result {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	merged := p.lastMerge
	p.lastMerge = nil
	return merged
}

func (p *Pipeline) filter(ctx context.Context, channels []feed.Channel) ([]feed.Channel, dedup.Report) {
	kept, report := dedup.Filter(channels, dedup.Options{
		Excluded:        p.excluded,
		ZeroNumberStart: p.cfg.Channels.ZeroNumberStart,
	})
	logger := logging.WithContext(services.WithStage(ctx, "dedup"), p.logger)
	for _, c := range report.Collisions {
		logger.Debug("channel collision",
			logging.String(logging.FieldEventType, "dedup_collision"),
			logging.String("kind", string(c.Kind)),
			logging.String("decision", string(c.Decision)),
			logging.String(logging.FieldChannelSlug, c.Channel.Slug),
			logging.String("existing_slug", c.Existing.Slug))
	}
	return kept, report
}
