package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/mood"
)

type classifyResult struct {
	Valence    float64      `json:"valence"`
	Energy     float64      `json:"energy"`
	Classified *domain.Mood `json:"classified"`
	Matched    *domain.Mood `json:"matched"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var valence, energy float64

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a mood from valence and energy",
		Long: `Run the rule-based classifier and the range matcher on a pair of
feature values. The two can disagree near range boundaries.

Examples:
  emotunes classify --valence 0.8 --energy 0.7
  emotunes classify --valence 0.2 --energy 0.9 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return classify(cmd.OutOrStdout(), opts.output, valence, energy)
		},
	}

	cmd.Flags().Float64Var(&valence, "valence", 0, "Valence in [0,1]")
	cmd.Flags().Float64Var(&energy, "energy", 0, "Energy in [0,1]")
	_ = cmd.MarkFlagRequired("valence")
	_ = cmd.MarkFlagRequired("energy")
	return cmd
}

func classify(w io.Writer, output string, valence, energy float64) error {
	f := domain.AudioFeatures{Valence: valence, Energy: energy}
	res := classifyResult{Valence: valence, Energy: energy}
	if m, ok := mood.Classify(f); ok {
		res.Classified = &m
	}
	if m, ok := mood.Infer(f); ok {
		res.Matched = &m
	}

	if output == "json" {
		return printJSON(w, res)
	}
	fmt.Fprintf(w, "Classifier: %s\n", moodLabel(res.Classified))
	fmt.Fprintf(w, "Ranges:     %s\n", moodLabel(res.Matched))
	return nil
}
