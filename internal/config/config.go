// Package config holds the settings of the voidchess binaries. Settings are
// read from a JSON file laid over Default.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/render"
	"github.com/simon-void/voidchess-engine/internal/storage"
)

type Config struct {
	Search  SearchConfig  `json:"search"`
	Storage StorageConfig `json:"storage"`
	Server  ServerConfig  `json:"server"`
	Render  RenderConfig  `json:"render"`
	Log     LogConfig     `json:"log"`
}

type SearchConfig struct {
	Preset          string  `json:"preset"` // quick, default or thorough; thresholds below override it when set
	BaseDepth       int     `json:"base_depth"`
	PawnMovedDepth  int     `json:"pawn_moved_depth"`
	CaptureDepth    int     `json:"capture_depth"`
	LimitDepth      int     `json:"limit_depth"`
	StopProbability float64 `json:"stop_probability"`
	MaxGap          float64 `json:"max_gap"`
	Seed            uint64  `json:"seed"` // 0 picks a seed from the clock
	FullPromotions  bool    `json:"full_promotions"`
}

type StorageConfig struct {
	Enabled   bool   `json:"enabled"`
	Dir       string `json:"dir"` // "" uses the platform data directory
	InMemory  bool   `json:"in_memory"`
	EvalTTLHr int    `json:"eval_ttl_hours"`
}

type ServerConfig struct {
	Addr           string `json:"addr"`
	AllowedOrigins string `json:"allowed_origins"`
	MaxGames       int    `json:"max_games"`
}

type RenderConfig struct {
	SquareSize  int  `json:"square_size"`
	Coordinates bool `json:"coordinates"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

func Default() Config {
	return Config{
		Search: SearchConfig{
			Preset:          "default",
			StopProbability: 0.7,
			MaxGap:          0.2,
		},
		Storage: StorageConfig{
			Enabled:   true,
			EvalTTLHr: 24 * 7,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: "*",
			MaxGames:       1000,
		},
		Render: RenderConfig{
			SquareSize:  60,
			Coordinates: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Policy returns the search policy: the preset, with each threshold
// replaced when it is set.
func (c SearchConfig) Policy() (engine.Policy, error) {
	p, ok := engine.PolicyByName(c.Preset)
	if !ok {
		return engine.Policy{}, fmt.Errorf("unknown search preset %q", c.Preset)
	}
	if c.BaseDepth > 0 {
		p.Base = c.BaseDepth
	}
	if c.PawnMovedDepth > 0 {
		p.PawnMoved = c.PawnMovedDepth
	}
	if c.CaptureDepth > 0 {
		p.Capture = c.CaptureDepth
	}
	if c.LimitDepth > 0 {
		p.Limit = c.LimitDepth
	}
	return p, p.Validate()
}

// Validate checks the settings that cannot fall back to a default.
func (c Config) Validate() error {
	if _, err := c.Search.Policy(); err != nil {
		return err
	}
	if c.Search.StopProbability <= 0 || c.Search.StopProbability > 1 {
		return fmt.Errorf("search.stop_probability %g must be in (0, 1]", c.Search.StopProbability)
	}
	if c.Search.MaxGap < 0 {
		return fmt.Errorf("search.max_gap %g must not be negative", c.Search.MaxGap)
	}
	if c.Render.SquareSize < 16 || c.Render.SquareSize > 256 {
		return fmt.Errorf("render.square_size %d must be in [16, 256]", c.Render.SquareSize)
	}
	if c.Server.MaxGames < 1 {
		return fmt.Errorf("server.max_games %d must be positive", c.Server.MaxGames)
	}
	return nil
}

// EngineOptions converts the search section.
func (c Config) EngineOptions() (engine.Options, error) {
	p, err := c.Search.Policy()
	if err != nil {
		return engine.Options{}, err
	}
	seed := c.Search.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return engine.Options{
		Policy:          p,
		StopProbability: c.Search.StopProbability,
		MaxGap:          c.Search.MaxGap,
		Seed:            seed,
		FullPromotions:  c.Search.FullPromotions,
	}, nil
}

// StorageOptions converts the storage section.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Dir:      c.Storage.Dir,
		InMemory: c.Storage.InMemory,
		EvalTTL:  time.Duration(c.Storage.EvalTTLHr) * time.Hour,
	}
}

// RenderOptions converts the render section.
func (c Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.SquareSize = c.Render.SquareSize
	opts.Coordinates = c.Render.Coordinates
	return opts
}
