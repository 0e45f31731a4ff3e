package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"plutoiptv/internal/pipeline"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List the published channel line-up",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline) error {
				listing, err := p.Listing(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, listing)
				}

				rows := make([][]string, 0, len(listing.Channels))
				for _, ch := range listing.Channels {
					rows = append(rows, []string{
						strconv.Itoa(ch.Number),
						ch.Name,
						ch.Slug,
						ch.Category,
						strconv.Itoa(ch.OriginalNumber),
					})
				}
				out := cmd.OutOrStdout()
				title := fmt.Sprintf("%s of %s channels published",
					humanize.Comma(int64(listing.TotalFiltered)), humanize.Comma(int64(listing.TotalRaw)))
				fmt.Fprintln(out, renderTable(title, []tableColumn{
					numberColumn("#"),
					textColumn("Name"),
					textColumn("Slug"),
					textColumn("Category"),
					numberColumn("Upstream #"),
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the line-up as JSON")
	return cmd
}
