// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     Dependencies
	maxCount int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxCount int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxCount: maxCount,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?game=&timeframe=&count=N
// requests. An omitted timeframe defaults to the current ISO week; an
// omitted count defaults to 10.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	game := q.Get("game")
	if game == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	count := 10
	if countStr := q.Get("count"); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		count = n
	}
	if count > h.maxCount {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	page, err := h.deps.TopPlayers(r.Context(), game, q.Get("timeframe"), count)
	if err != nil {
		if isBadInput(err) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}
