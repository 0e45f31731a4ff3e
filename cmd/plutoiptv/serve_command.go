package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plutoiptv/internal/config"
	"plutoiptv/internal/daemon"
	"plutoiptv/internal/logging"
	"plutoiptv/internal/pipeline"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playlist, guide and status API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, closeDaemon, err := startDaemon(signalCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeDaemon()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", d.Addr())
			<-signalCtx.Done()
			logger.Info("shutdown signal received",
				logging.String(logging.FieldEventType, "shutdown_signal"))
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override the listen address (host:port)")
	return cmd
}

// startDaemon builds the pipeline and daemon from one base logger and starts
// serving. The returned func stops the daemon and closes the pipeline.
func startDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	d, err := daemon.New(cfg, p, logger)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	if err := d.Start(ctx); err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return d, func() {
		_ = d.Close()
		_ = p.Close()
	}, nil
}
