// Package logging builds the zerolog logger shared by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/simon-void/voidchess-engine/internal/config"
)

// New returns a logger writing JSON lines to stderr, or human readable
// lines when cfg.Pretty is set. It also becomes the global logger.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	logger, err := NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return logger, err
	}
	log.Logger = logger
	return logger, nil
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
