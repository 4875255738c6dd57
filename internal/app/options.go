package service

import (
	"time"

	"github.com/okian/lineup/internal/adapters/repository"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where snapshots are loaded from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithHistoryStore enables analysis history persistence.
func WithHistoryStore(h HistoryStore) Option {
	return func(s *Service) {
		if h != nil {
			s.history = h
		}
	}
}

// WithWeights sets the score term weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithLeagueSize sets the number of teams used by the matchup term.
func WithLeagueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leagueSize = n
		}
	}
}

// WithMatchupPolicy sets how out-of-range opponent ranks are handled.
func WithMatchupPolicy(p scoring.MatchupPolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithHistoryQueueSize bounds the pending history records.
func WithHistoryQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyQueueSize = n
		}
	}
}

// WithHistoryWorkers sets the number of history writers.
func WithHistoryWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWorkers = n
		}
	}
}

// WithMaxHistoryLimit caps the history page size.
func WithMaxHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistoryLimit = n
		}
	}
}

// WithReloadSchedule sets a cron spec for periodic snapshot reloads.
func WithReloadSchedule(spec string) Option {
	return func(s *Service) {
		s.reloadSchedule = spec
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the analysis id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}
