// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	PlayersDependencies
	AnalyzeDependencies
	HistoryDependencies
	ReloadDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	analyzeHandler *AnalyzeHandler
	historyHandler *HistoryHandler
	reloadHandler  *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		playersHandler: NewPlayersHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		reloadHandler:  NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/players", MetricsMiddleware(s.playersHandler.HandleGetPlayers, "players"))
	mux.HandleFunc("/api/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/api/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/api/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

// Player is the read shape of a snapshot record.
type Player = model.Player

// Result is the read shape of an analysis.
type Result = types.Result

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		// e.g. a non-finite score from a bad snapshot row
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "encode_failed", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
