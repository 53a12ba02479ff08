// Command voidchess-server serves the engine over HTTP and websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/api"
	"github.com/simon-void/voidchess-engine/internal/config"
	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/logging"
	"github.com/simon-void/voidchess-engine/internal/storage"
)

var (
	configPath = flag.String("config", "", "path of a JSON config file")
	addr       = flag.String("addr", "", "override the configured listen address")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	eng := engine.New(opts, logger)

	serverOpts := api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxGames:       cfg.Server.MaxGames,
		Render:         cfg.RenderOptions(),
	}
	if cfg.Storage.Enabled {
		store, err := storage.Open(cfg.StorageOptions(), logger)
		if err != nil {
			return err
		}
		defer store.Close()
		eng.SetCache(store)
		serverOpts.Store = store
	}

	srv := api.New(eng, serverOpts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Server.Addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errc
}
