// Package repository implements the per-partition rank indexes and the
// reverse player-membership index backing the ranking engine.
package repository

import (
	"context"
	"time"
)

// Record is one player's personal best inside a single partition.
type Record struct {
	PlayerID    string
	DisplayName string
	Score       int64
	UpdatedAt   time.Time
	Metadata    map[string]string
}

// UpsertOutcome reports what an UpsertBest call did.
// Previous is nil when the player had no prior record.
type UpsertOutcome struct {
	Accepted bool
	Created  bool
	Previous *int64
}

// Index provides ordered access to a single leaderboard partition.
// Enumeration order is score descending with ties broken by player ID
// ascending, so pagination and windows are total and stable.
type Index interface {
	// UpsertBest atomically applies the max-score rule for a player: the
	// stored score changes only when score is strictly greater than the
	// existing one, or when the player is new to the partition. The check
	// and the write happen under one critical section, so two racing
	// submissions for the same player cannot both observe "no record".
	UpsertBest(ctx context.Context, playerID, displayName string, score int64, metadata map[string]string) (UpsertOutcome, error)

	// Get returns the player's record or ErrNotFound.
	Get(ctx context.Context, playerID string) (Record, error)

	// TopK returns up to k records in enumeration order. k must be >= 1;
	// values above the ceiling are clamped, not rejected.
	TopK(ctx context.Context, k int) ([]Record, error)

	// CountStrictlyGreater returns the number of players whose score is
	// strictly greater than the given score.
	CountStrictlyGreater(ctx context.Context, score int64) int

	// Count returns the number of players in the partition.
	Count(ctx context.Context) int

	// WindowAround returns up to contextSize players on either side of the
	// given player plus the player itself, in enumeration order. Asymmetric
	// windows near the edges are valid. Returns ErrNotFound when the player
	// has no record.
	WindowAround(ctx context.Context, playerID string, contextSize int) ([]Record, error)
}
