package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/lineup/internal/domain/types"
)

// defaultHistoryLimit is used when the limit parameter is absent.
const defaultHistoryLimit = 10

// HistoryDependencies defines the interface for reading persisted analyses.
type HistoryDependencies interface {
	History(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	HistoryEnabled() bool
	MaxHistoryLimit() int
}

// HistoryHandler handles analysis history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /api/history?limit=N requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if !h.deps.HistoryEnabled() {
		writeError(w, http.StatusNotFound, "history_disabled", NewKind(op, ErrHistoryDisabled))
		return
	}

	maxLimit := h.deps.MaxHistoryLimit()
	n := min(defaultHistoryLimit, maxLimit)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if parsed > maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}

	entries, err := h.deps.History(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
