package api

import (
	"context"
	"net/http"
)

// ReloadDependencies defines the interface for refreshing the snapshot.
type ReloadDependencies interface {
	Reload(ctx context.Context) (int, error)
}

// ReloadHandler handles snapshot reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

type reloadResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

// HandleReload handles POST /api/reload requests.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	n, err := h.deps.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload_failed", WrapKind(op, ErrReload, err))
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Players: n})
}
