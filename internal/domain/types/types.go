// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/lineup/internal/domain/model"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Players []string `json:"players"`
}

// Result is the ranked, labeled outcome of one analysis call.
type Result struct {
	AnalyzedPlayers []model.AnalyzedPlayer `json:"analyzed_players"`
	TotalSelected   int                    `json:"total_selected"`
}

// HistoryEntry is a persisted analysis as returned by the history endpoint.
type HistoryEntry struct {
	ID        string                 `json:"id"`
	Requested []string               `json:"requested"`
	Players   []model.AnalyzedPlayer `json:"analyzed_players"`
	CreatedAt time.Time              `json:"created_at"`
}
