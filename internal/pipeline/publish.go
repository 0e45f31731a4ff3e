package pipeline

import (
	"context"

	"plutoiptv/internal/fileutil"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/services"
)

// Publish writes both documents to the output directory. Both files are
// staged before either is renamed into place, and concurrent publishes are
// serialized.
func (p *Pipeline) Publish(ctx context.Context, out *Output) ([]string, error) {
	if out == nil {
		return nil, services.Wrap(services.ErrValidation, "publish", "", "nothing to publish", nil)
	}
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "ensure directories", p.cfg.Output.Dir, err)
	}
	artifacts := []fileutil.Artifact{
		{Path: p.cfg.PlaylistPath(), Data: out.Playlist},
		{Path: p.cfg.GuidePath(), Data: out.Guide},
	}
	if err := fileutil.PublishAll(artifacts, 0o644); err != nil {
		return nil, services.Wrap(services.ErrValidation, "publish", "write", p.cfg.Output.Dir, err)
	}

	paths := []string{p.cfg.PlaylistPath(), p.cfg.GuidePath()}
	logging.WithContext(services.WithStage(ctx, "publish"), p.logger).Info("documents published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.String("playlist", paths[0]),
		logging.String("guide", paths[1]),
		logging.Int("playlist_bytes", len(out.Playlist)),
		logging.Int("guide_bytes", len(out.Guide)))
	return paths, nil
}

// Generate runs, or refreshes when force is set, and publishes the result.
func (p *Pipeline) Generate(ctx context.Context, force bool) (*Output, error) {
	run := p.Run
	if force {
		run = p.Refresh
	}
	out, err := run(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := p.Publish(ctx, out); err != nil {
		return out, err
	}
	return out, nil
}
