package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/speech-feedback/orchestrator"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "analyze <video>...",
		Short: "Extract, transcribe and score one or more video files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, videos []string) error {
			if jobs <= 0 {
				jobs = a.conf.Pipeline.Jobs
			}
			ctx := cmd.Context()
			p, closeAll, err := orchestrator.Wire(ctx, a.conf, a.log, nil)
			if err != nil {
				return err
			}
			defer closeAll()

			reports, runErr := p.RunAll(ctx, videos, jobs)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, r := range reports {
				if r == nil {
					continue
				}
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			if runErr != nil {
				return fmt.Errorf("some analyses failed:\n%w", runErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "concurrent analyses (default pipeline.jobs)")
	return cmd
}
