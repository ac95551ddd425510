// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores requests. The submission is applied
// synchronously and the max-score outcome returned to the caller.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.SubmitScore(r.Context(), req.submission())
	if err != nil {
		if isBadInput(err) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePostBatch handles POST /scores/batch requests. Each submission is
// deduplicated by submission_id and queued for async processing; the ack only
// promises eventual application under the max-score rule.
func (h *ScoresHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var reqs []scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if req.SubmissionID == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}

	var resp batchResponse
	for _, req := range reqs {
		// Idempotency check - mark as seen first
		if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
			resp.Duplicates++
			continue
		}
		if ok := h.deps.EnqueueSubmission(r.Context(), req.submission()); !ok {
			// Rollback the "seen" status since enqueue failed
			h.deps.Unrecord(r.Context(), req.SubmissionID)
			resp.Rejected++
			continue
		}
		resp.Enqueued++
	}

	if resp.Rejected > 0 {
		resp.Status = "backpressure"
		writeJSON(w, http.StatusTooManyRequests, resp)
		return
	}
	resp.Status = "accepted"
	writeJSON(w, http.StatusAccepted, resp)
}
