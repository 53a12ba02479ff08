// Command voidchess plays and analyses games on a line based console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/config"
	"github.com/simon-void/voidchess-engine/internal/console"
	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/logging"
	"github.com/simon-void/voidchess-engine/internal/storage"
)

var (
	configPath = flag.String("config", "", "path of a JSON config file")
	logLevel   = flag.String("log-level", "", "override the configured log level")
	noCache    = flag.Bool("no-cache", false, "do not cache evaluations on disk")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("voidchess failed")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("cpu profiling enabled")
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	eng := engine.New(opts, logger)

	if cfg.Storage.Enabled && !*noCache {
		store, err := storage.Open(cfg.StorageOptions(), logger)
		if err != nil {
			// The console works without a cache; another process may hold the lock.
			logger.Warn().Err(err).Msg("evaluation cache disabled")
		} else {
			defer store.Close()
			eng.SetCache(store)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return console.New(eng, cfg.RenderOptions(), logger).Run(ctx, os.Stdin, os.Stdout)
}
