package model

import "time"

// ScoreRecord is a player's personal best within one partition.
// The stored score is monotonically non-decreasing: it only moves when a
// strictly greater score arrives for the same (partition, player) pair.
type ScoreRecord struct {
	Key         LeaderboardKey
	PlayerID    string
	DisplayName string
	Score       int64
	UpdatedAt   time.Time
	Metadata    map[string]string
}

// Submission is a score submission request after boundary validation.
// ID is an optional idempotency token used by the async ingestion path.
type Submission struct {
	ID          string
	GameID      string
	TimeFrame   string
	PlayerID    string
	DisplayName string
	Score       int64
	Metadata    map[string]string
}
