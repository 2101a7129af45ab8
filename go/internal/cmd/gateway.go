package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/broadcast"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/draftrpc"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/gateway"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/snapcache"
)

const engineClientTimeout = 15 * time.Second

// newGatewayCmd runs the websocket gateway apart from the engine. Events
// arrive over JetStream and commands go to the engine over RPC.
func newGatewayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run a standalone websocket gateway fed by JetStream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			reg := newRegistry()
			metrics := gateway.NewMetrics(reg)

			engine := draftrpc.NewClient(&http.Client{Timeout: engineClientTimeout}, cfg.Gateway.EngineURL)
			hub := broadcast.NewHub()
			sinks := []gateway.Sink{hub}

			g, ctx := errgroup.WithContext(ctx)

			var opts []gateway.ServiceOption
			cache, rdb, err := setupCache(ctx, cfg)
			if err != nil {
				return err
			}
			if cache != nil {
				defer rdb.Close()
				writer := snapcache.NewWriter(cache, 0)
				sinks = append(sinks, writer)
				opts = append(opts, gateway.WithSnapshotCache(cache))
				g.Go(func() error { return writer.Run(ctx) })
			}

			gwCfg := gateway.DefaultConfig()
			gwCfg.JetStreamConfig.URL = cfg.NATS.URL
			gwCfg.JetStreamConfig.StreamName = cfg.NATS.Stream

			consumer, err := gateway.NewEventConsumer(gwCfg.JetStreamConfig, metrics, sinks...)
			if err != nil {
				return err
			}
			opts = append(opts, gateway.WithEventConsumer(consumer), gateway.WithServiceMetrics(metrics))

			svc := gateway.NewService(gwCfg, engine, hub, opts...)

			mux := http.NewServeMux()
			svc.RegisterRoutes(mux)
			setupHealthCheck(mux)
			setupMetrics(mux, reg)

			g.Go(func() error { return svc.Start(ctx) })
			g.Go(func() error { return runServer(ctx, setupServer(cfg.Gateway.Port, mux)) })

			log.Info().
				Int("port", cfg.Gateway.Port).
				Str("engine", cfg.Gateway.EngineURL).
				Str("nats", cfg.NATS.URL).
				Msg("draft gateway serving")
			return g.Wait()
		},
	}
}
