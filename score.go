package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/orchestrator"
)

// score runs the analysis core on a transcript that is already on hand.
func newScoreCmd(a *app) *cobra.Command {
	var (
		text     string
		file     string
		duration float64
		lexicon  string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a transcript without media or speech recognition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (text == "") == (file == "") {
				return errors.New("exactly one of --text or --file is required")
			}
			if duration < 0 {
				return errors.New("--duration must not be negative")
			}
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				text = string(b)
			}
			if lexicon != "" {
				words, err := cfg.LoadLexicon(lexicon)
				if err != nil {
					return err
				}
				a.conf.Analysis.FillerWords = words
			}

			ctx := cmd.Context()
			an, closeAnalyzer, err := orchestrator.NewAnalyzer(ctx, a.conf, a.log)
			if err != nil {
				return err
			}
			defer closeAnalyzer()

			fb, err := an.Analyze(ctx, text, duration)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fb)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "transcript text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the transcript from a file")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "audio duration in seconds")
	cmd.Flags().StringVar(&lexicon, "lexicon", "", "yaml file replacing the filler-word lexicon")
	return cmd
}
