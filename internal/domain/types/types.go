// Package types contains the plain result shapes exposed to adapters.
package types

import "time"

// RankedEntry is one leaderboard row with rank and percentile attached.
type RankedEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name,omitempty"`
	Score       int64  `json:"score"`
	Percentile  int    `json:"percentile"`
	Band        string `json:"band"`
}

// SubmitResult reports the outcome of a score submission.
// PreviousScore is nil on a first submission for the pair.
type SubmitResult struct {
	Accepted      bool   `json:"accepted"`
	PreviousScore *int64 `json:"previous_score,omitempty"`
}

// RankResult holds a player's competition rank within one partition.
type RankResult struct {
	GameID       string `json:"game_id"`
	TimeFrame    string `json:"time_frame"`
	PlayerID     string `json:"player_id"`
	DisplayName  string `json:"display_name,omitempty"`
	Score        int64  `json:"score"`
	Rank         int    `json:"rank"`
	TotalPlayers int    `json:"total_players"`
	Percentile   int    `json:"percentile"`
	Band         string `json:"band"`
}

// LeaderboardPage is a top-N view of one partition. Ranks are positional
// within the page (1-based), not competition ranks.
type LeaderboardPage struct {
	GameID       string        `json:"game_id"`
	TimeFrame    string        `json:"time_frame"`
	TotalPlayers int           `json:"total_players"`
	Entries      []RankedEntry `json:"entries"`
}

// WindowResult is the context window around a target player.
// Above is sorted by score descending (best neighbor first); Below likewise,
// so distance from the target grows toward the start of Above and the end of
// Below.
type WindowResult struct {
	GameID    string        `json:"game_id"`
	TimeFrame string        `json:"time_frame"`
	Player    RankedEntry   `json:"player"`
	Above     []RankedEntry `json:"above"`
	Below     []RankedEntry `json:"below"`
}

// ReportOptions control filtering and shaping of a cross-leaderboard report.
type ReportOptions struct {
	// GameID restricts the report to one game when non-empty.
	GameID string
	// TimeFrame restricts the report to one time frame when non-empty.
	TimeFrame string
	// GroupByGame groups entries by game instead of a flat list.
	GroupByGame bool
	// BestPerGame reduces each game to its single highest-score record.
	BestPerGame bool
}

// ReportEntry is one partition's standing within a cross-leaderboard report.
type ReportEntry struct {
	GameID       string    `json:"game_id"`
	TimeFrame    string    `json:"time_frame"`
	Score        int64     `json:"score"`
	Rank         int       `json:"rank"`
	TotalPlayers int       `json:"total_players"`
	Percentile   int       `json:"percentile"`
	Band         string    `json:"band"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Report aggregates a player's standings across every partition they appear
// in. Groups is populated only when grouping by game was requested.
type Report struct {
	PlayerID string                   `json:"player_id"`
	Entries  []ReportEntry            `json:"entries,omitempty"`
	Groups   map[string][]ReportEntry `json:"groups,omitempty"`
}
