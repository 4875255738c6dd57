package api

import (
	"context"
	"net/http"

	"github.com/okian/lineup/internal/domain/model"
)

// PlayersDependencies defines the interface for reading the snapshot.
type PlayersDependencies interface {
	Players(ctx context.Context) []model.Player
}

// PlayersHandler handles player listing requests.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /api/players requests.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	players := h.deps.Players(r.Context())
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}
