// Command draftd runs the live draft engine, the outbox relay and the
// websocket gateway, and offers client subcommands against a running engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        *Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("draftd failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "draftd",
		Short:         "Live snake draft engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Debug().Err(err).Msg("could not load .env file")
			}

			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			setupLogging(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "draft.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeCmd(a),
		newRelayCmd(a),
		newGatewayCmd(a),
		newDraftCmd(a),
	)
	return root
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
