package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plutoiptv/internal/api"
	"plutoiptv/internal/pipeline"
	"plutoiptv/internal/preflight"
)

type statusReport struct {
	ConfigPath string             `json:"configPath"`
	Checks     []preflight.Result `json:"checks"`
	Cache      api.CacheStatus    `json:"cache"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the category table, the feed and the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigPath: ctx.configPath,
				Checks:     preflight.RunAll(cmd.Context(), cfg),
			}
			err = ctx.withPipeline(func(p *pipeline.Pipeline) error {
				st, err := p.Cache().Status(cmd.Context())
				if err != nil {
					return err
				}
				report.Cache = api.FromCacheStatus(st)
				return nil
			})
			if err != nil {
				report.Checks = append(report.Checks, preflight.Result{Name: "Snapshot cache", Detail: err.Error()})
			}

			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printStatus(cmd, report)
			}
			if failed := preflight.Failed(report.Checks); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output status as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	lines := renderSectionHeader("Preflight", colorize)
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Cache", colorize)...)
	lines = append(lines, cacheStatusLines(report.Cache, colorize)...)
	printLines(out, lines)
}

func cacheStatusLines(st api.CacheStatus, colorize bool) []string {
	lines := []string{renderStatusLine("Backend", statusInfo, fmt.Sprintf("%s (%s)", st.Backend, st.Path), colorize)}
	if !st.HasData {
		return append(lines, renderStatusLine("Snapshot", statusWarn, "empty", colorize))
	}
	kind, state := statusOK, "fresh"
	if !st.Fresh {
		kind, state = statusWarn, "stale"
	}
	return append(lines, renderStatusLine("Snapshot", kind,
		fmt.Sprintf("%s, %s channels, captured %s", state, humanize.Comma(int64(st.Channels)), st.CapturedAt), colorize))
}
