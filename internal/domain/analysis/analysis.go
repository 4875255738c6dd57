// Package analysis selects, scores, ranks, and labels players for a
// start/bench decision.
package analysis

import (
	"context"
	"sort"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
)

// allStartThreshold is the largest selection in which every player starts.
const allStartThreshold = 2

// Scorer computes a composite score for a player.
type Scorer interface {
	Score(p model.Player) float64
}

// Snapshot provides the current read-only player records.
type Snapshot interface {
	All(ctx context.Context) []model.Player
}

// Analyzer runs the select -> score -> rank -> label pipeline.
type Analyzer struct {
	snapshot Snapshot
	scorer   Scorer
}

// NewAnalyzer creates an analyzer over the given snapshot and scorer.
func NewAnalyzer(snapshot Snapshot, scorer Scorer) *Analyzer {
	return &Analyzer{snapshot: snapshot, scorer: scorer}
}

// Analyze returns the ranked, labeled players whose names were requested.
// Unknown names are ignored; an empty request yields an empty result.
func (a *Analyzer) Analyze(ctx context.Context, names []string) types.Result {
	selected := Select(a.snapshot.All(ctx), names)
	ranked := Rank(Annotate(selected, a.scorer))
	Recommend(ranked)
	return types.Result{
		AnalyzedPlayers: ranked,
		TotalSelected:   len(ranked),
	}
}

// Select returns the records whose name matches one of names, in store
// order. Each matching store record appears once regardless of how many
// times its name was requested. The store is not modified.
func Select(store []model.Player, names []string) []model.Player {
	if len(names) == 0 || len(store) == 0 {
		return []model.Player{}
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	out := make([]model.Player, 0, len(names))
	for _, p := range store {
		if _, ok := wanted[p.Name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Annotate scores each player into a new AnalyzedPlayer value.
func Annotate(players []model.Player, scorer Scorer) []model.AnalyzedPlayer {
	out := make([]model.AnalyzedPlayer, len(players))
	for i, p := range players {
		out[i] = model.AnalyzedPlayer{Player: p, Score: scorer.Score(p)}
	}
	return out
}

// Rank sorts players by score descending in place and returns them. Equal
// scores keep their input order.
func Rank(players []model.AnalyzedPlayer) []model.AnalyzedPlayer {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return players
}

// Recommend labels a ranked slice: the top half by count starts, the rest
// sit. Selections of two or fewer all start.
func Recommend(ranked []model.AnalyzedPlayer) {
	n := len(ranked)
	midpoint := n / 2
	for i := range ranked {
		if n <= allStartThreshold || i < midpoint {
			ranked[i].Recommendation = model.Start
		} else {
			ranked[i].Recommendation = model.Bench
		}
	}
}
