package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"plutoiptv/internal/dedup"
	"plutoiptv/internal/pipeline"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Report duplicate numbers, names and slugs in the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline) error {
				analysis, err := p.AnalyzeDuplicates(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, analysis)
				}
				printAnalysis(cmd.OutOrStdout(), analysis, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the analysis as JSON")
	return cmd
}

func printAnalysis(w io.Writer, analysis dedup.Analysis, colorize bool) {
	sections := []struct {
		title string
		pairs []dedup.Pair
	}{
		{"Duplicate numbers", analysis.Duplicates.ByNumber},
		{"Duplicate names", analysis.Duplicates.ByName},
		{"Duplicate slugs", analysis.Duplicates.BySlug},
	}
	for _, section := range sections {
		printLines(w, renderSectionHeader(fmt.Sprintf("%s (%d)", section.title, len(section.pairs)), colorize))
		if len(section.pairs) == 0 {
			fmt.Fprintln(w, "none")
			fmt.Fprintln(w)
			continue
		}
		rows := make([][]string, 0, len(section.pairs))
		for _, pair := range section.pairs {
			rows = append(rows, []string{
				strconv.Itoa(pair.Current.Number), pair.Current.Name, pair.Current.Slug,
				strconv.Itoa(pair.Existing.Number), pair.Existing.Name, pair.Existing.Slug,
			})
		}
		fmt.Fprintln(w, renderTable("", []tableColumn{
			numberColumn("#"),
			textColumn("Name"),
			textColumn("Slug"),
			numberColumn("First #"),
			textColumn("First name"),
			textColumn("First slug"),
		}, rows))
		fmt.Fprintln(w)
	}

	s := analysis.Summary
	fmt.Fprintf(w, "%d of %d channels eligible; %d unique\n",
		analysis.ValidChannels, analysis.TotalChannels, s.TotalUniqueChannels)
}
