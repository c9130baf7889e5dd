package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/queue"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var url, subject string
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print forecast events published by the service on NATS",
		Example: `  arforecast watch --url nats://localhost:4222 --subject arforecast.forecasts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			qcfg := cfg.Queue
			qcfg.Type = "nats"
			if url != "" {
				qcfg.URL = url
			}
			if subject != "" {
				qcfg.Subject = subject
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchEvents(ctx, cmd, qcfg, count, logger.Warn)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "NATS server URL (default: queue.url from the configuration)")
	cmd.Flags().StringVar(&subject, "subject", "", "Event subject (default: queue.subject from the configuration)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many events, 0 to run until interrupted")

	return cmd
}

// watchEvents prints one JSON event per line until ctx ends or count
// events have been printed.
func watchEvents(ctx context.Context, cmd *cobra.Command, cfg config.QueueConfig, count int, warn func(string, ...interface{})) error {
	q, err := queue.NewQueue(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan *queue.ForecastEvent)
	err = q.Subscribe(cfg.Subject, func(data []byte) error {
		ev, err := queue.DecodeForecastEvent(data)
		if err != nil {
			warn("Skipping malformed event", "error", err)
			return nil
		}
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := enc.Encode(ev); err != nil {
				return err
			}
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}
