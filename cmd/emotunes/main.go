package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	output   string // "text" or "json"
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{output: "text", logLevel: "warn"}

	root := &cobra.Command{
		Use:   "emotunes",
		Short: "EmoTunes CLI - analyze songs and explore moods",
		Long: `EmoTunes extracts audio features from a song and classifies its mood.

Configuration is read from the environment and an optional .env file,
the same way the API server reads it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q (want text or json)", opts.output)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.output, "output", opts.output, "Output format: text or json")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level: debug, info, warn, error")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newClassifyCmd(opts))
	root.AddCommand(newMoodsCmd(opts))
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
