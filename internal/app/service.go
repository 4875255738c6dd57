// Package service provides the core business service that implements
// the dependencies required by the HTTP and MCP boundaries.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	historyqueue "github.com/okian/lineup/internal/adapters/mq/queue"
	workerpool "github.com/okian/lineup/internal/adapters/mq/worker"
	"github.com/okian/lineup/internal/adapters/repository"
	"github.com/okian/lineup/internal/domain/analysis"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/internal/domain/types"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

const (
	defaultHistoryQueueSize = 1024
	defaultHistoryWorkers   = 2
	defaultMaxHistoryLimit  = 100
	stopTimeout             = 10 * time.Second
)

// HistoryStore persists and lists completed analyses.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) error
	RecentAnalyses(ctx context.Context, limit int) ([]model.AnalysisRecord, error)
}

// Service owns the active snapshot and runs analyses against it.
type Service struct {
	mu sync.RWMutex

	// Core components
	source   repository.Source
	store    *repository.MemoryStore
	scorer   *scoring.Scorer
	analyzer *analysis.Analyzer

	// History pipeline, nil when no history store is configured
	history      HistoryStore
	historyQueue *historyqueue.InMemoryQueue
	historyPool  *workerpool.Pool

	scheduler *cron.Cron

	// Configuration
	weights          scoring.Weights
	leagueSize       int
	policy           scoring.MatchupPolicy
	historyQueueSize int
	historyWorkers   int
	maxHistoryLimit  int
	reloadSchedule   string

	// State
	started    bool
	lastReload time.Time
	lastError  string

	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// New constructs a Service. The snapshot stays empty until Start or Reload.
func New(opts ...Option) *Service {
	s := &Service{
		source:           repository.NewBuiltinSource(),
		weights:          scoring.DefaultWeights(),
		leagueSize:       scoring.DefaultLeagueSize,
		policy:           scoring.PolicyAccept,
		historyQueueSize: defaultHistoryQueueSize,
		historyWorkers:   defaultHistoryWorkers,
		maxHistoryLimit:  defaultMaxHistoryLimit,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scorer = scoring.NewScorer(
		scoring.WithWeights(s.weights),
		scoring.WithLeagueSize(s.leagueSize),
		scoring.WithMatchupPolicy(s.policy),
	)
	s.store = repository.NewMemoryStore(
		repository.WithRankPolicy(s.policy),
		repository.WithLeagueSize(s.leagueSize),
		repository.WithClock(s.now),
	)
	s.analyzer = analysis.NewAnalyzer(s.store, s.scorer)
	return s
}

// Start loads the first snapshot and starts the history workers and the
// reload schedule.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting lineup service", logger.String("source", s.source.Name()))

	if _, err := s.reloadLocked(ctx); err != nil {
		return err
	}

	if s.history != nil {
		s.historyQueue = historyqueue.NewInMemoryQueue(historyqueue.WithCapacity(s.historyQueueSize))
		s.historyPool = workerpool.NewPool(s.historyWorkers, s.historyQueue, s.history)
		// workers outlive the start context; Stop drains them
		s.historyPool.Start(context.WithoutCancel(ctx))
	}

	if s.reloadSchedule != "" {
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})))
		if _, err := c.AddFunc(s.reloadSchedule, s.scheduledReload); err != nil {
			s.stopHistoryLocked(ctx)
			return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, s.reloadSchedule, err)
		}
		c.Start()
		s.scheduler = c
	}

	s.started = true
	s.logger.Info(ctx, "lineup service started",
		logger.Int("players", s.store.Count(ctx)),
		logger.Bool("history", s.history != nil),
		logger.String("reload_schedule", s.reloadSchedule),
	)
	return nil
}

// Stop halts the schedule and drains pending history records.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping lineup service")

	// a running reload needs s.mu, so wait for it unlocked
	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopHistoryLocked(ctx)
	s.started = false
	s.logger.Info(ctx, "lineup service stopped")
}

func (s *Service) stopHistoryLocked(ctx context.Context) {
	if s.historyPool == nil {
		return
	}
	if err := s.historyPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "history drain incomplete", logger.Error(err))
	}
	s.historyPool = nil
	s.historyQueue = nil
}

// Players returns the active snapshot in store order.
func (s *Service) Players(ctx context.Context) []model.Player {
	return s.store.All(ctx)
}

// Analyze scores and labels the requested players. When history is enabled
// the result is queued for persistence; a full queue drops the record, never
// the response.
func (s *Service) Analyze(ctx context.Context, names []string) types.Result {
	start := time.Now()
	res := s.analyzer.Analyze(ctx, names)

	metrics.RecordAnalysis(len(names), res.TotalSelected, float64(time.Since(start).Microseconds())/1000.0)
	metrics.RecordUnknownNames(unknownCount(names, res.AnalyzedPlayers))
	for _, p := range res.AnalyzedPlayers {
		metrics.RecordRecommendation(string(p.Recommendation), p.Position, p.Score)
	}

	s.enqueueHistory(ctx, names, res)
	return res
}

func (s *Service) enqueueHistory(ctx context.Context, names []string, res types.Result) {
	s.mu.RLock()
	q := s.historyQueue
	s.mu.RUnlock()
	if q == nil {
		return
	}

	requested := make([]string, len(names))
	copy(requested, names)
	rec := model.AnalysisRecord{
		ID:        s.newID(),
		Requested: requested,
		Players:   res.AnalyzedPlayers,
		CreatedAt: s.now().UTC(),
	}
	if !q.Enqueue(ctx, rec) {
		s.logger.Warn(ctx, "history queue full, record dropped", logger.String("analysis_id", rec.ID))
	}
}

// History returns up to limit persisted analyses, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit < 1 || limit > s.maxHistoryLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidLimit, s.maxHistoryLimit)
	}
	recs, err := s.history.RecentAnalyses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	out := make([]types.HistoryEntry, len(recs))
	for i, r := range recs {
		out[i] = types.HistoryEntry{ID: r.ID, Requested: r.Requested, Players: r.Players, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

// HistoryEnabled reports whether analyses are persisted.
func (s *Service) HistoryEnabled() bool { return s.history != nil }

// MaxHistoryLimit returns the largest accepted history limit.
func (s *Service) MaxHistoryLimit() int { return s.maxHistoryLimit }

// Reload replaces the snapshot from the configured source. In-flight
// analyses keep the snapshot they started with.
func (s *Service) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) (int, error) {
	n, err := s.store.Reload(ctx, s.source)
	if err != nil {
		s.lastError = err.Error()
		s.log().Error(ctx, "snapshot reload failed", logger.String("source", s.source.Name()), logger.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	s.lastReload = s.now()
	s.lastError = ""
	s.log().Info(ctx, "snapshot loaded", logger.String("source", s.source.Name()), logger.Int("players", n))
	return n, nil
}

func (s *Service) scheduledReload() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	_, _ = s.Reload(ctx)
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s.logger
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.store.Current()
	stats := map[string]interface{}{
		"started":          s.started,
		"source":           s.source.Name(),
		"players":          len(snap.Players),
		"reloads":          s.store.Reloads(),
		"leagueSize":       s.leagueSize,
		"defRankPolicy":    string(s.policy),
		"historyEnabled":   s.history != nil,
		"reloadSchedule":   s.reloadSchedule,
		"snapshotLoadedAt": snap.LoadedAt.UTC().Format(time.RFC3339),
	}
	if !s.lastReload.IsZero() {
		stats["lastReload"] = s.lastReload.UTC().Format(time.RFC3339)
	}
	if s.lastError != "" {
		stats["lastReloadError"] = s.lastError
	}
	if s.historyQueue != nil {
		stats["historyQueueLength"] = s.historyQueue.Len(ctx)
		stats["historyQueueCapacity"] = s.historyQueue.Capacity()
	}
	if s.historyPool != nil {
		stats["historyWorkers"] = s.historyPool.Size()
		stats["historyWritten"] = s.historyPool.Processed()
	}
	return stats
}

// unknownCount returns how many distinct requested names matched nothing.
func unknownCount(names []string, matched []model.AnalyzedPlayer) int {
	if len(names) == 0 {
		return 0
	}
	found := make(map[string]struct{}, len(matched))
	for _, p := range matched {
		found[p.Name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(names))
	n := 0
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := found[name]; !ok {
			n++
		}
	}
	return n
}

// cronLogger routes scheduler messages through the service logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), "cron: "+msg, logger.Any("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), "cron: "+msg, logger.Error(err), logger.Any("details", keysAndValues))
}
