// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records a submission ID for
	// idempotent batch ingestion. Unrecord rolls one back after a failed
	// enqueue.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// SubmitScore applies one submission synchronously.
	SubmitScore(ctx context.Context, sub model.Submission) (types.SubmitResult, error)

	// EnqueueSubmission pushes a submission for async processing.
	// Returns false on backpressure.
	EnqueueSubmission(ctx context.Context, sub model.Submission) bool

	// Read operations expose leaderboard data.
	TopPlayers(ctx context.Context, gameID, timeFrame string, count int) (types.LeaderboardPage, error)
	Rank(ctx context.Context, gameID, timeFrame, playerID string) (types.RankResult, error)
	ContextWindow(ctx context.Context, gameID, timeFrame, playerID string, contextSize int) (types.WindowResult, error)
	CrossLeaderboardReport(ctx context.Context, playerID string, opts types.ReportOptions) (types.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	aroundHandler      *AroundHandler
	playersHandler     *PlayersHandler
}

// Limits bound client-supplied page and window sizes.
type Limits struct {
	MaxLeaderboardCount int
	MaxContextSize      int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, limits Limits) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, limits.MaxLeaderboardCount),
		rankHandler:        NewRankHandler(deps),
		aroundHandler:      NewAroundHandler(deps, limits.MaxContextSize),
		playersHandler:     NewPlayersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores/batch", MetricsMiddleware(s.scoresHandler.HandlePostBatch, "scores_batch"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/around/", MetricsMiddleware(s.aroundHandler.HandleGetAround, "around"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandleGetLeaderboards, "players"))
}

// scoreRequest mirrors the OpenAPI schema for POST /scores.
type scoreRequest struct {
	SubmissionID string            `json:"submission_id,omitempty"`
	GameID       string            `json:"game_id"`
	TimeFrame    string            `json:"time_frame,omitempty"`
	PlayerID     string            `json:"player_id"`
	DisplayName  string            `json:"display_name,omitempty"`
	Score        int64             `json:"score"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.GameID) == "":
		return errors.New("missing game_id")
	case strings.TrimSpace(s.PlayerID) == "":
		return errors.New("missing player_id")
	case s.Score < 0:
		return errors.New("negative score")
	}
	return nil
}

func (s scoreRequest) submission() model.Submission {
	return model.Submission{
		ID:          s.SubmissionID,
		GameID:      s.GameID,
		TimeFrame:   s.TimeFrame,
		PlayerID:    s.PlayerID,
		DisplayName: s.DisplayName,
		Score:       s.Score,
		Metadata:    s.Metadata,
	}
}

// batchResponse summarizes the outcome of POST /scores/batch.
type batchResponse struct {
	Status     string `json:"status"`
	Enqueued   int    `json:"enqueued"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// isBadInput translates key validation errors to 400.
func isBadInput(err error) bool {
	return errors.Is(err, model.ErrEmptyGameID) ||
		errors.Is(err, model.ErrInvalidTimeFrame) ||
		errors.Is(err, repository.ErrInvalidLimit)
}
