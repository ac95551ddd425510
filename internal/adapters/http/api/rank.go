// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// RankHandler handles rank requests.
type RankHandler struct {
	deps Dependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{game}/{player_id}?timeframe= requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	game, player, ok := splitGamePlayer(r.URL.Path, "/rank/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Rank(r.Context(), game, r.URL.Query().Get("timeframe"), player)
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
	writeJSON(w, http.StatusOK, res)
}

// splitGamePlayer extracts the {game}/{player_id} pair after prefix.
func splitGamePlayer(path, prefix string) (game, player string, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
