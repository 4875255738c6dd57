// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultOpponentDefRank is used when a record carries no opponent defensive rank.
// It is the median of a 32-team league.
const DefaultOpponentDefRank = 16

// Sentinel kinds for record construction.
var (
	ErrInvalidRecord = errors.New("invalid player record")
)

// Recommendation is the start/bench label attached during analysis.
type Recommendation string

// Recommendation labels.
const (
	Start Recommendation = "Start"
	Bench Recommendation = "Bench"
)

// Player is one player's known attributes for a scoring cycle.
type Player struct {
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	ProjectedPoints float64 `json:"projected_points"`
	Last3Avg        float64 `json:"last_3_avg"`
	OpponentDefRank int     `json:"opponent_def_rank"`
}

// AnalyzedPlayer is a copy of a Player annotated with its score and label.
type AnalyzedPlayer struct {
	Player
	Score          float64        `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
}

// AnalysisRecord captures one completed analysis for the history store.
type AnalysisRecord struct {
	ID        string
	Requested []string
	Players   []AnalyzedPlayer
	CreatedAt time.Time
}

// playerDTO mirrors the wire shape with optional fields so defaults can be
// applied in one place.
type playerDTO struct {
	Name            string   `json:"name"`
	Position        string   `json:"position"`
	Team            string   `json:"team"`
	ProjectedPoints *float64 `json:"projected_points"`
	Last3Avg        *float64 `json:"last_3_avg"`
	OpponentDefRank *int     `json:"opponent_def_rank"`
}

func (d playerDTO) toPlayer() (Player, error) {
	p := Player{
		Name:            strings.TrimSpace(d.Name),
		Position:        d.Position,
		Team:            d.Team,
		OpponentDefRank: DefaultOpponentDefRank,
	}
	if p.Name == "" {
		return Player{}, fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	if d.ProjectedPoints != nil {
		p.ProjectedPoints = *d.ProjectedPoints
	}
	if d.Last3Avg != nil {
		p.Last3Avg = *d.Last3Avg
	}
	if d.OpponentDefRank != nil {
		p.OpponentDefRank = *d.OpponentDefRank
	}
	return p, nil
}

// DecodePlayers parses a JSON array of player records, applying defaults for
// missing optional fields. A record without a name is rejected.
func DecodePlayers(data []byte) ([]Player, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Player{}, nil
	}
	var raw []playerDTO
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	players := make([]Player, 0, len(raw))
	for i, d := range raw {
		p, err := d.toPlayer()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		players = append(players, p)
	}
	return players, nil
}

// InRange reports whether the opponent rank lies within [1, leagueSize].
func (p Player) InRange(leagueSize int) bool {
	return p.OpponentDefRank >= 1 && p.OpponentDefRank <= leagueSize
}
