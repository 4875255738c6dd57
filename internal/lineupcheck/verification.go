package lineupcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/okian/lineup/internal/domain/analysis"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/internal/domain/types"
)

type staticSnapshot []model.Player

func (s staticSnapshot) All(context.Context) []model.Player { return s }

// verifier recomputes analyses locally from the fetched snapshot.
type verifier struct {
	analyzer *analysis.Analyzer
}

func newVerifier(players []model.Player, scorer *scoring.Scorer) *verifier {
	return &verifier{analyzer: analysis.NewAnalyzer(staticSnapshot(players), scorer)}
}

// verifyCase checks that every response for c is byte-identical and matches
// the local analysis.
func (v *verifier) verifyCase(ctx context.Context, c *Case) error {
	if len(c.Results) == 0 {
		return nil
	}
	first := c.Results[0]
	for i, r := range c.Results[1:] {
		if r != first {
			return fmt.Errorf("%w: case %d response %d differs from response 0", ErrInconsistent, c.ID, i+1)
		}
	}

	var got types.Result
	if err := json.Unmarshal([]byte(first), &got); err != nil {
		return fmt.Errorf("%w: case %d: decode: %w", ErrWrongResult, c.ID, err)
	}
	if err := checkSplit(got); err != nil {
		return fmt.Errorf("case %d: %w", c.ID, err)
	}
	want := v.analyzer.Analyze(ctx, c.Names)
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("%w: case %d: got %d players, want %d", ErrWrongResult, c.ID, got.TotalSelected, want.TotalSelected)
	}
	return nil
}

// checkSplit verifies ordering and the start/bench rule independently of
// the local analyzer.
func checkSplit(res types.Result) error {
	n := len(res.AnalyzedPlayers)
	if res.TotalSelected != n {
		return fmt.Errorf("%w: total_selected %d but %d players", ErrWrongResult, res.TotalSelected, n)
	}
	for i, p := range res.AnalyzedPlayers {
		if i > 0 && p.Score > res.AnalyzedPlayers[i-1].Score {
			return fmt.Errorf("%w: position %d scores higher than position %d", ErrWrongResult, i, i-1)
		}
		want := model.Bench
		if n <= 2 || i < n/2 {
			want = model.Start
		}
		if p.Recommendation != want {
			return fmt.Errorf("%w: position %d of %d labeled %s, want %s", ErrWrongResult, i, n, p.Recommendation, want)
		}
	}
	return nil
}
