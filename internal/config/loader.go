package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PODIUM_ADDR, PODIUM_QUEUE_SIZE, ...
	// Map env keys like PODIUM_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "podium_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardCount < 1:
		return fmt.Errorf("%w: max_leaderboard_count must be positive", ErrInvalidConfig)
	case c.MaxContextSize < 0:
		return fmt.Errorf("%w: max_context_size must not be negative", ErrInvalidConfig)
	}
	return nil
}
