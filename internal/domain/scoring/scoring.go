// Package scoring computes the composite desirability score for a player.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Default scoring configuration constants.
const (
	DefaultProjectedWeight = 0.40
	DefaultRecentWeight    = 0.35
	DefaultMatchupWeight   = 0.25
	DefaultLeagueSize      = 32
	scorePrecision         = 2

	// smallest float64 exponent; converting with it keeps every binary digit
	exactExponent = -1074
)

// MatchupPolicy controls how an opponent rank outside [1, league size] is treated.
type MatchupPolicy string

// Matchup policies. PolicyReject is enforced when a snapshot is loaded; the
// scorer treats it like PolicyAccept.
const (
	PolicyAccept MatchupPolicy = "accept"
	PolicyClamp  MatchupPolicy = "clamp"
	PolicyReject MatchupPolicy = "reject"
)

// ParseMatchupPolicy maps a config string onto a MatchupPolicy.
func ParseMatchupPolicy(s string) (MatchupPolicy, error) {
	switch p := MatchupPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAccept, nil
	case PolicyAccept, PolicyClamp, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Weights holds the three term weights of the composite score.
type Weights struct {
	Projected float64
	Recent    float64
	Matchup   float64
}

// DefaultWeights returns the standard 0.40/0.35/0.25 split.
func DefaultWeights() Weights {
	return Weights{
		Projected: DefaultProjectedWeight,
		Recent:    DefaultRecentWeight,
		Matchup:   DefaultMatchupWeight,
	}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the term weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Projected >= 0 && w.Recent >= 0 && w.Matchup >= 0 {
			s.weights = w
		}
	}
}

// WithLeagueSize sets the number of teams the matchup term inverts against.
func WithLeagueSize(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.leagueSize = n
		}
	}
}

// WithMatchupPolicy sets how out-of-range opponent ranks are scored.
func WithMatchupPolicy(p MatchupPolicy) Option {
	return func(s *Scorer) {
		if p != "" {
			s.policy = p
		}
	}
}

// Scorer computes composite scores. It is immutable after construction and
// safe for concurrent use.
type Scorer struct {
	weights    Weights
	leagueSize int
	policy     MatchupPolicy
}

// NewScorer creates a scorer with the default weights and league size.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights:    DefaultWeights(),
		leagueSize: DefaultLeagueSize,
		policy:     PolicyAccept,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the configured term weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Score returns the composite score rounded half-to-even to two decimals.
// Non-finite inputs yield the non-finite sum unrounded.
func (s *Scorer) Score(p model.Player) float64 {
	rank := p.OpponentDefRank
	if s.policy == PolicyClamp {
		rank = clamp(rank, 1, s.leagueSize)
	}

	// explicit conversions keep each product rounded, never fused
	raw := float64(s.weights.Projected*p.ProjectedPoints) +
		float64(s.weights.Recent*p.Last3Avg) +
		float64(s.weights.Matchup*float64(s.leagueSize-rank))
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return raw
	}

	// Round the exact binary value of the sum: 15.945 is stored as
	// 15.94500000000000028... and rounds up, a true tie like 0.125 rounds to even.
	rounded, _ := decimal.NewFromFloatWithExponent(raw, exactExponent).RoundBank(scorePrecision).Float64()
	return rounded
}

// LeagueSize returns the configured league size.
func (s *Scorer) LeagueSize() int { return s.leagueSize }

// Policy returns the configured matchup policy.
func (s *Scorer) Policy() MatchupPolicy { return s.policy }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
