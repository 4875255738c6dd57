package repository

import (
	"time"

	"github.com/okian/lineup/internal/domain/scoring"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRankPolicy sets how out-of-range opponent ranks are handled on load.
// Only scoring.PolicyReject changes store behavior.
func WithRankPolicy(p scoring.MatchupPolicy) Option {
	return func(s *MemoryStore) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithLeagueSize sets the upper bound of a valid opponent rank.
func WithLeagueSize(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.leagueSize = n
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
