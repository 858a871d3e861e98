package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/mood"
)

type moodRow struct {
	Mood   domain.Mood             `json:"mood"`
	Ranges map[string]domain.Range `json:"ranges"`
}

func newMoodsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "Print the feature ranges that define each mood",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMoods(cmd.OutOrStdout(), opts.output)
		},
	}
}

func printMoods(w io.Writer, output string) error {
	rows := make([]moodRow, 0, len(domain.Moods))
	for _, m := range domain.Moods {
		rows = append(rows, moodRow{Mood: m, Ranges: mood.Ranges[m]})
	}
	if output == "json" {
		return printJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOOD\tFEATURE\tMIN\tMAX")
	for _, row := range rows {
		names := make([]string, 0, len(row.Ranges))
		for name := range row.Ranges {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := row.Ranges[name]
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\n", row.Mood, name, r.Min, r.Max)
		}
	}
	return tw.Flush()
}
