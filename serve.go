package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/speech-feedback/logging"
	"github.com/maastricht-university/speech-feedback/media"
	"github.com/maastricht-university/speech-feedback/metrics"
	"github.com/maastricht-university/speech-feedback/orchestrator"
	"github.com/maastricht-university/speech-feedback/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.conf.Server.Addr = addr
			}
			ctx := cmd.Context()

			ex := media.NewExtractor(a.conf.Audio.FFmpeg, a.conf.Audio.FFprobe, a.conf.Audio.SampleRate, a.conf.Audio.Channels)
			if err := ex.Available(); err != nil {
				a.log.WithError(err).Warn("ffmpeg tools missing, video uploads will fail")
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			p, closeAll, err := orchestrator.Wire(ctx, a.conf, a.log, m)
			if err != nil {
				return err
			}
			defer closeAll()

			srv := server.New(a.conf, p, reg, logging.WithComponent(a.log, "http"))
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}
