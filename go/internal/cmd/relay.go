package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/outbox"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/outbox/worker"
)

// relayRuntime is an outbox relay and the resources it holds open.
type relayRuntime struct {
	relay  *outbox.Relay
	health *outbox.RelayHealthChecker

	closers []func() error
}

func (r *relayRuntime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close relay resource")
		}
	}
}

// healthServer serves the relay health check and metrics on their own port.
func (r *relayRuntime) healthServer(port int, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/health", r.health)
	setupMetrics(mux, reg)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
}

func setupRelay(ctx context.Context, cfg *Config, reg prometheus.Registerer, conn *sql.DB, dryRun bool) (*relayRuntime, error) {
	rt := &relayRuntime{}
	source := outbox.NewRepository(conn)

	var (
		publisher outbox.Publisher
		bus       outbox.ConnStatus
	)
	if dryRun {
		publisher = outbox.LogPublisher{}
		log.Info().Msg("dry run: relayed events are logged, not published")
	} else {
		jsCfg := worker.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.Stream

		js, err := worker.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		rt.closers = append(rt.closers, js.Close)
		publisher = outbox.NewMetricPublisher(js, reg)
		bus = js.Conn()
	}

	listener, err := outbox.NewPQListener(cfg.listenerConfig())
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create outbox listener: %w", err)
	}
	rt.closers = append(rt.closers, listener.Close)

	rt.relay = outbox.NewRelay(source, publisher, listener, cfg.listenerConfig(),
		outbox.WithRelayMetrics(outbox.NewPrometheusMetrics(reg)),
	)
	rt.health = outbox.NewRelayHealthChecker(rt.relay, conn, source, bus, cfg.Outbox.HealthThreshold)
	return rt, nil
}

func newRelayCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay committed draft events from the outbox to JetStream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			reg := newRegistry()

			conn, err := setupDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			rt, err := setupRelay(ctx, cfg, reg, conn, dryRun)
			if err != nil {
				return err
			}
			defer rt.Close()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return rt.relay.Start(ctx) })
			g.Go(func() error { return runServer(ctx, rt.healthServer(cfg.Outbox.HealthPort, reg)) })

			log.Info().
				Str("channel", cfg.Outbox.Channel).
				Int("health_port", cfg.Outbox.HealthPort).
				Msg("outbox relay running")
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log events instead of publishing them")
	return cmd
}
