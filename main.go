package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/logging"
)

var version = "dev"

// app is filled in by the root command before any subcommand runs.
type app struct {
	configPath string
	logLevel   string

	conf *cfg.Root
	log  *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "speech-feedback",
		Short:         "Speech quality feedback for recorded presentations",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := cfg.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				conf.Pipeline.LogLvl = a.logLevel
			}
			if conf.Pipeline.Version == "dev" {
				conf.Pipeline.Version = version
			}
			a.conf = conf
			a.log = logging.NewWithOutput(cmd.ErrOrStderr(), conf.Pipeline.LogLvl, conf.Pipeline.LogFormat)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config.yaml (searched for when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override pipeline.log_level")

	root.AddCommand(newAnalyzeCmd(a), newScoreCmd(a), newServeCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
