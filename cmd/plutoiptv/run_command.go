package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plutoiptv/internal/api"
	"plutoiptv/internal/pipeline"
	"plutoiptv/internal/render"
)

type runResult struct {
	Summary api.RunSummary `json:"summary"`
	Written []string       `json:"written,omitempty"`
	DryRun  bool           `json:"dryRun"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the playlist and guide once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline) error {
				run := p.Run
				if refresh {
					run = p.Refresh
				}
				out, err := run(cmd.Context())
				if err != nil {
					return err
				}

				result := runResult{Summary: api.FromDiagnostics(out.Diagnostics), DryRun: dryRun}
				if !dryRun {
					written, err := p.Publish(cmd.Context(), out)
					if err != nil {
						return err
					}
					result.Written = written
				}

				if jsonOut {
					return writeJSON(cmd, result)
				}
				printRunSummary(cmd.OutOrStdout(), out, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard the cached snapshot and fetch the feed again")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render both documents without writing them")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the run summary as JSON")
	return cmd
}

func printRunSummary(w io.Writer, out *pipeline.Output, result runResult) {
	d := out.Diagnostics
	fmt.Fprintf(w, "Snapshot: %s (captured %s)\n", d.CacheSource, humanize.Time(d.CapturedAt))
	if d.Windows > 0 {
		fmt.Fprintf(w, "Windows fetched: %d\n", d.Windows)
	}
	fmt.Fprintf(w, "Channels: %s raw, %s published\n", humanize.Comma(int64(d.RawChannels)), humanize.Comma(int64(d.Published)))
	fmt.Fprintf(w, "Collisions: %d number, %d name, %d slug; %d reassigned\n",
		d.NumberCollisions, d.NameCollisions, d.SlugCollisions, d.Reassigned)
	fmt.Fprintf(w, "Playlist: %s entries (%s)\n",
		humanize.Comma(int64(d.PlaylistChannels)), humanize.Bytes(uint64(len(out.Playlist))))
	fmt.Fprintf(w, "Guide: %s channels (%s)\n",
		humanize.Comma(int64(d.GuideChannels)), humanize.Bytes(uint64(len(out.Guide))))
	if skips := d.SkipCount(render.RendererPlaylist) + d.SkipCount(render.RendererGuide); skips > 0 {
		fmt.Fprintf(w, "Skipped: %d playlist, %d guide\n",
			d.SkipCount(render.RendererPlaylist), d.SkipCount(render.RendererGuide))
	}
	if d.CacheWriteError != "" {
		fmt.Fprintf(w, "Warning: snapshot not cached: %s\n", d.CacheWriteError)
	}
	if result.DryRun {
		fmt.Fprintln(w, "Dry run: nothing written")
		return
	}
	for _, path := range result.Written {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
}
