package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/emotunes/internal/adapters/sqlite"
	"github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/config"
	"github.com/ewilliams-labs/emotunes/internal/core/domain"
	"github.com/ewilliams-labs/emotunes/internal/core/ports"
	"github.com/ewilliams-labs/emotunes/internal/core/services"
	"github.com/ewilliams-labs/emotunes/internal/features"
	"github.com/ewilliams-labs/emotunes/internal/logger"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "analyze <url|path>",
		Short: "Extract audio features from a song and classify its mood",
		Long: `Download (http/https) or open (local path) an audio file, extract its
features and classify the mood.

Examples:
  emotunes analyze https://example.com/preview.mp3
  emotunes analyze ./song.wav --store --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logger.New(opts.logLevel, "")
			defer func() { _ = log.Sync() }()

			var repo ports.AnalysisRepository
			if store {
				db, err := sqlite.NewAdapter(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				defer db.Close()
				repo = db
			}

			fetcher := audio.NewFetcher(audio.FetcherConfig{
				MaxBytes:   cfg.MaxAudioBytes(),
				Formats:    cfg.AudioFormats,
				HTTPClient: &http.Client{Timeout: cfg.DownloadTimeout},
			}, log)
			extractor := features.NewExtractor(features.Config{SampleRate: cfg.SampleRate, HopLength: cfg.HopLength})
			analyzer := services.NewSongAnalyzer(fetcher, extractor, repo, cfg.SampleRate, log)

			source := args[0]
			var outcome domain.AnalysisOutcome
			if isRemote(source) {
				outcome = analyzer.Analyze(cmd.Context(), source)
			} else {
				outcome = analyzer.AnalyzeFile(cmd.Context(), source)
			}
			return printOutcome(cmd.OutOrStdout(), opts.output, outcome)
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "Save the analysis to the configured database")
	return cmd
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func printOutcome(w io.Writer, output string, outcome domain.AnalysisOutcome) error {
	if output == "json" {
		if err := printJSON(w, outcome); err != nil {
			return err
		}
	} else if outcome.OK() {
		a := outcome.Analysis
		fmt.Fprintf(w, "ID:               %s\n", a.ID)
		fmt.Fprintf(w, "Title:            %s\n", a.Title)
		if a.Artist != "" {
			fmt.Fprintf(w, "Artist:           %s\n", a.Artist)
		}
		fmt.Fprintf(w, "Tempo:            %.1f BPM\n", a.Features.Tempo)
		fmt.Fprintf(w, "Energy:           %.3f\n", a.Features.Energy)
		fmt.Fprintf(w, "Valence:          %.3f\n", a.Features.Valence)
		fmt.Fprintf(w, "Danceability:     %.3f\n", a.Features.Danceability)
		fmt.Fprintf(w, "Instrumentalness: %.3f\n", a.Features.Instrumentalness)
		fmt.Fprintf(w, "Mood:             %s\n", moodLabel(a.PredictedMood))
	}

	if !outcome.OK() {
		return fmt.Errorf("analysis unavailable (%s): %w", outcome.Failure, outcome.Err)
	}
	return nil
}

func moodLabel(m *domain.Mood) string {
	if m == nil {
		return "-"
	}
	return m.String()
}
