// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/types"
)

// PlayersHandler handles cross-leaderboard report requests.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetLeaderboards handles
// GET /players/{player_id}/leaderboards?game=&timeframe=&group=game&best=true
// requests.
func (h *PlayersHandler) HandleGetLeaderboards(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player_leaderboards"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/players/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "leaderboards" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	player := parts[0]

	q := r.URL.Query()
	opts := types.ReportOptions{
		GameID:      q.Get("game"),
		TimeFrame:   q.Get("timeframe"),
		GroupByGame: q.Get("group") == "game",
		BestPerGame: q.Get("best") == "true",
	}

	rep, err := h.deps.CrossLeaderboardReport(r.Context(), player, opts)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		if isBadInput(err) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
