// Package repository loads player snapshots and persists analysis history.
package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/metrics"
)

// Source produces a full player snapshot.
type Source interface {
	// Load returns every player record in source order.
	Load(ctx context.Context) ([]model.Player, error)
	// Name identifies the source in logs, stats, and metrics.
	Name() string
}

// Snapshot is an immutable set of player records published by MemoryStore.
type Snapshot struct {
	Players  []model.Player
	Source   string
	LoadedAt time.Time
}

// MemoryStore holds the active snapshot. Readers never block: each read
// sees whichever snapshot was published last, and a reload swaps it whole.
type MemoryStore struct {
	policy     scoring.MatchupPolicy
	leagueSize int
	now        func() time.Time

	snapshot atomic.Pointer[Snapshot]
	reloads  atomic.Int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		policy:     scoring.PolicyAccept,
		leagueSize: scoring.DefaultLeagueSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{Players: []model.Player{}, LoadedAt: s.now()})
	return s
}

// All returns the active snapshot's records. Callers must not modify them.
func (s *MemoryStore) All(_ context.Context) []model.Player {
	return s.snapshot.Load().Players
}

// Current returns the active snapshot.
func (s *MemoryStore) Current() *Snapshot {
	return s.snapshot.Load()
}

// Count returns the number of records in the active snapshot.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Players)
}

// Reloads returns the number of snapshots published so far.
func (s *MemoryStore) Reloads() int64 {
	return s.reloads.Load()
}

// Replace validates players and publishes them as the new snapshot. On error
// the previous snapshot stays active.
func (s *MemoryStore) Replace(_ context.Context, source string, players []model.Player) error {
	if s.policy == scoring.PolicyReject {
		for _, p := range players {
			if !p.InRange(s.leagueSize) {
				return fmt.Errorf("%w: %s has rank %d (league size %d)",
					ErrRankOutOfRange, p.Name, p.OpponentDefRank, s.leagueSize)
			}
		}
	}

	cp := make([]model.Player, len(players))
	copy(cp, players)
	s.snapshot.Store(&Snapshot{Players: cp, Source: source, LoadedAt: s.now()})
	s.reloads.Add(1)
	metrics.UpdateSnapshotPlayers(len(cp))
	return nil
}

// Reload loads a fresh snapshot from src and publishes it. It returns the
// number of records now active.
func (s *MemoryStore) Reload(ctx context.Context, src Source) (int, error) {
	if src == nil {
		return 0, ErrNilSource
	}
	start := time.Now()
	result := "ok"
	defer func() {
		ms := float64(time.Since(start).Microseconds()) / 1000.0
		metrics.RecordSnapshotReload(src.Name(), result, ms, s.now().Unix())
	}()

	players, err := src.Load(ctx)
	if err != nil {
		result = "error"
		metrics.RecordErrorByComponent("repository", "load_failed")
		return 0, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	if err := s.Replace(ctx, src.Name(), players); err != nil {
		result = "error"
		metrics.RecordErrorByComponent("repository", "rank_out_of_range")
		return 0, err
	}
	return len(players), nil
}
