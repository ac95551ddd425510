// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of submission workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardCount caps GET /leaderboard?count.
	MaxLeaderboardCount int `koanf:"max_leaderboard_count"`

	// MaxContextSize caps GET /around?context.
	MaxContextSize int `koanf:"max_context_size"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          500_000,
		MaxLeaderboardCount: 100,
		MaxContextSize:      20,
	}
}
