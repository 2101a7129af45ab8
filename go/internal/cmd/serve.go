package main

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/draftrpc"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/gateway"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		so        storeOptions
		withRelay bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the draft engine with its RPC API and websocket gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			reg := newRegistry()

			svcs, err := setupServices(ctx, cfg, reg, so)
			if err != nil {
				return err
			}
			defer svcs.Close()

			gwOpts := []gateway.ServiceOption{gateway.WithServiceMetrics(gateway.NewMetrics(reg))}
			if svcs.Cache != nil {
				gwOpts = append(gwOpts, gateway.WithSnapshotCache(svcs.Cache))
			}
			gw := gateway.NewService(gateway.DefaultConfig(), svcs.Orchestrator, svcs.Hub, gwOpts...)

			mux := http.NewServeMux()
			path, handler := draftrpc.NewHandler(draftrpc.NewService(svcs.Orchestrator))
			mux.Handle(path, handler)
			gw.RegisterRoutes(mux)
			setupHealthCheck(mux)
			setupMetrics(mux, reg)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return svcs.Orchestrator.Run(ctx) })
			g.Go(func() error { return gw.Start(ctx) })
			g.Go(func() error { return runServer(ctx, setupServer(cfg.Server.Port, mux)) })
			if svcs.CacheWriter != nil {
				g.Go(func() error { return svcs.CacheWriter.Run(ctx) })
			}

			if withRelay {
				if svcs.DB == nil {
					log.Warn().Msg("--relay ignored in memory mode")
				} else {
					rl, err := setupRelay(ctx, cfg, reg, svcs.DB, false)
					if err != nil {
						return err
					}
					defer rl.Close()
					g.Go(func() error { return rl.relay.Start(ctx) })
					g.Go(func() error { return runServer(ctx, rl.healthServer(cfg.Outbox.HealthPort, reg)) })
				}
			}

			log.Info().
				Int("port", cfg.Server.Port).
				Str("rpc", path).
				Bool("memory", so.memory).
				Msg("draft engine serving")
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&so.memory, "memory", false, "keep drafts in memory instead of Postgres")
	cmd.Flags().StringVar(&so.seedPath, "seed", "", "seed file loaded into the memory store")
	cmd.Flags().BoolVar(&so.migrate, "migrate", false, "apply the draft schema before serving")
	cmd.Flags().BoolVar(&withRelay, "relay", false, "run the outbox relay in this process")
	return cmd
}
