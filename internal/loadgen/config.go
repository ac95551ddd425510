package loadgen

import "time"

// Config holds configuration for the load generator.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of submissions to generate
	Games          []string      // Games to spread submissions across
	TimeFrame      string        // Time frame for all submissions; empty means current week
	TopN           int           // Number of top entries to fetch per game
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for submissions
	LogFile        string        // Log file for run output
	Verbose        bool          // Enable verbose logging
}

// Submission mirrors the POST /scores request body.
type Submission struct {
	SubmissionID string `json:"submission_id,omitempty"`
	GameID       string `json:"game_id"`
	TimeFrame    string `json:"time_frame,omitempty"`
	PlayerID     string `json:"player_id"`
	Score        int64  `json:"score"`
}

// SubmitResult mirrors the POST /scores response body.
type SubmitResult struct {
	Accepted      bool   `json:"accepted"`
	PreviousScore *int64 `json:"previous_score"`
}

// RankResult mirrors the GET /rank response body.
type RankResult struct {
	GameID       string `json:"game_id"`
	TimeFrame    string `json:"time_frame"`
	PlayerID     string `json:"player_id"`
	Score        int64  `json:"score"`
	Rank         int    `json:"rank"`
	TotalPlayers int    `json:"total_players"`
	Percentile   int    `json:"percentile"`
	Band         string `json:"band"`
}

// RankedEntry mirrors one leaderboard row.
type RankedEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}

// LeaderboardPage mirrors the GET /leaderboard response body.
type LeaderboardPage struct {
	GameID       string        `json:"game_id"`
	TimeFrame    string        `json:"time_frame"`
	TotalPlayers int           `json:"total_players"`
	Entries      []RankedEntry `json:"entries"`
}

// Stats holds run statistics.
type Stats struct {
	SubmissionsGenerated int
	SubmissionsSent      int
	SubmissionsAccepted  int
	SubmissionsDeclined  int
	SubmissionsFailed    int
	RanksRetrieved       int
	LeaderboardEntries   int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
