// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

// AroundHandler handles context-window requests.
type AroundHandler struct {
	deps       Dependencies
	maxContext int
}

// NewAroundHandler creates a new around handler.
func NewAroundHandler(deps Dependencies, maxContext int) *AroundHandler {
	return &AroundHandler{
		deps:       deps,
		maxContext: maxContext,
	}
}

// HandleGetAround handles GET /around/{game}/{player_id}?timeframe=&context=N
// requests. An omitted context defaults to 5; zero is allowed and returns
// just the target player.
func (h *AroundHandler) HandleGetAround(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_around"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	game, player, ok := splitGamePlayer(r.URL.Path, "/around/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	contextSize := 5
	if sizeStr := r.URL.Query().Get("context"); sizeStr != "" {
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		contextSize = n
	}
	if contextSize > h.maxContext {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	res, err := h.deps.ContextWindow(r.Context(), game, r.URL.Query().Get("timeframe"), player, contextSize)
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
