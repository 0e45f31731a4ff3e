package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"plutoiptv/internal/api"
	"plutoiptv/internal/config"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/notifications"
	"plutoiptv/internal/pipeline"
	"plutoiptv/internal/services"
)

// LockFileName is created in the output directory while a daemon runs.
const LockFileName = "plutoiptv.lock"

// Daemon serves the published documents and keeps them fresh.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	server   *apiServer
	notifier notifications.Service
	now      func() time.Time

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.RWMutex
	lastRun   time.Time
	lastErr   error
	lastDiag  *pipeline.Diagnostics
	refreshMu sync.Mutex
}

// New constructs a daemon around p.
func New(cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || p == nil {
		return nil, errors.New("daemon requires config and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Output.Dir, LockFileName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		pipeline: p,
		notifier: notifications.NewService(cfg),
		now:      time.Now,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg.Server.Bind, d, logger)
	return d, nil
}

// Start acquires the instance lock, generates both documents once, starts
// the HTTP server and, when enabled, the auto-refresh loop. A failed initial
// generation is logged and reported by /status but does not stop the daemon.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another plutoiptv daemon is already publishing to this output directory")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("plutoiptv daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.addr()))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.refresh(runCtx, "startup", false)
		if d.cfg.Server.AutoRefresh {
			d.autoRefresh(runCtx, d.cfg.RefreshInterval())
		}
	}()
	return nil
}

// Stop stops the refresh loop and HTTP server and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath))
	}
	d.running.Store(false)
	d.logger.Info("plutoiptv daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close stops the daemon. The pipeline stays open and belongs to the caller.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the address the HTTP server listens on, once started.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Refresh regenerates and publishes both documents. When force is set the
// cached snapshot is discarded first.
func (d *Daemon) Refresh(ctx context.Context, force bool) (*pipeline.Output, error) {
	return d.refresh(ctx, "manual", force)
}

func (d *Daemon) refresh(ctx context.Context, trigger string, force bool) (*pipeline.Output, error) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	ctx = services.WithStage(ctx, "refresh")
	out, err := d.pipeline.Generate(ctx, force)

	d.mu.Lock()
	wasFailing := d.lastErr != nil
	d.lastRun = d.now()
	d.lastErr = err
	if out != nil {
		diag := out.Diagnostics
		d.lastDiag = &diag
	}
	d.mu.Unlock()

	if err != nil {
		logging.ErrorWithContext(d.logger, "refresh failed", "refresh_failed",
			logging.String("trigger", trigger),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check feed reachability with 'plutoiptv status'"),
			logging.String(logging.FieldImpact, "previously published files are still served"))
		if !wasFailing {
			d.notify(ctx, "refresh_failed", func(ctx context.Context) error {
				return d.notifier.NotifyRefreshFailed(ctx, err, trigger)
			})
		}
		return nil, err
	}
	d.logger.Info("refresh complete",
		logging.String(logging.FieldEventType, "refresh_complete"),
		logging.String("trigger", trigger),
		logging.String("cache_source", string(out.Diagnostics.CacheSource)),
		logging.Int("channels", out.Diagnostics.Published))
	if wasFailing {
		d.notify(ctx, "refresh_recovered", func(ctx context.Context) error {
			return d.notifier.NotifyRefreshRecovered(ctx, out.Diagnostics.Published)
		})
	}
	return out, nil
}

// notify sends only on failure/recovery transitions; delivery errors are logged.
func (d *Daemon) notify(ctx context.Context, event string, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(d.logger, "notification failed", "notification_failed",
			logging.String("notification", event),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "refresh alert not delivered"))
	}
}

func (d *Daemon) autoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.refresh(ctx, "auto", false)
		}
	}
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	d.mu.RLock()
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		PlaylistPath: d.cfg.PlaylistPath(),
		GuidePath:    d.cfg.GuidePath(),
		AutoRefresh:  d.cfg.Server.AutoRefresh,
		LastRun:      api.FormatTime(d.lastRun),
	}
	if d.lastErr != nil {
		status.LastError = d.lastErr.Error()
	}
	if d.lastDiag != nil {
		summary := api.FromDiagnostics(*d.lastDiag)
		status.LastSummary = &summary
	}
	d.mu.RUnlock()

	if st, err := d.pipeline.Cache().Status(ctx); err == nil {
		status.Cache = api.FromCacheStatus(st)
	} else {
		d.logger.Debug("cache status unavailable", logging.Error(err))
	}
	return status
}
