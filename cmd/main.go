package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/lineup/internal/adapters/http/api"
	"github.com/okian/lineup/internal/adapters/http/site"
	"github.com/okian/lineup/internal/adapters/http/swagger"
	lineupmcp "github.com/okian/lineup/internal/adapters/mcp"
	"github.com/okian/lineup/internal/adapters/repository"
	app "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/internal/config"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Initialize logging with defaults until the config is known
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open player source", logger.String("source", cfg.PlayerSource), logger.Error(err))
		return
	}
	defer st.Close(ctx)

	opts, err := serviceOptions(cfg, st)
	if err != nil {
		loggerInstance.Error(ctx, "invalid service options", logger.Error(err))
		return
	}
	svc := app.New(append(opts, app.WithLogger(loggerInstance.Named("service")))...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("version", version),
			logger.Bool("mcp", cfg.MCPEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
		loggerInstance.Info(ctx, "shutting down server...")
	case err := <-serveErr:
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// stores holds the configured snapshot source, the optional history store,
// and whatever connections back them.
type stores struct {
	source  repository.Source
	history app.HistoryStore
	closers []func() error
}

// Close releases every connection opened by openStores.
func (s *stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logger.Get().Warn(ctx, "failed to close store", logger.Error(err))
		}
	}
}

// openStores builds the snapshot source named by the config and, when
// history is enabled, the SQL store analyses are written to.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	var sqlStore *repository.SQLStore
	if cfg.UsesSQL() {
		db, err := repository.OpenSQL(ctx, cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		sqlStore, err = repository.NewSQLStore(ctx, db, cfg.SQLDriver)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		st.closers = append(st.closers, sqlStore.Close)
		if cfg.HistoryEnabled {
			st.history = sqlStore
		}
	}

	switch cfg.PlayerSource {
	case config.SourceBuiltin:
		st.source = repository.NewBuiltinSource()
	case config.SourceJSON:
		st.source = repository.NewJSONFileSource(cfg.PlayersFile)
	case config.SourceSQL:
		st.source = sqlStore
	case config.SourceRedis:
		client := repository.NewRedisClient(repository.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		st.closers = append(st.closers, client.Close)
		st.source = repository.NewRedisSource(client, cfg.RedisKey)
	default:
		st.Close(ctx)
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidConfig, cfg.PlayerSource)
	}
	return st, nil
}

// serviceOptions maps the config onto service options.
func serviceOptions(cfg *config.Config, st *stores) ([]app.Option, error) {
	policy, err := scoring.ParseMatchupPolicy(cfg.DefRankPolicy)
	if err != nil {
		return nil, err
	}
	opts := []app.Option{
		app.WithSource(st.source),
		app.WithWeights(scoring.Weights{
			Projected: cfg.WeightProjected,
			Recent:    cfg.WeightRecent,
			Matchup:   cfg.WeightMatchup,
		}),
		app.WithLeagueSize(cfg.LeagueSize),
		app.WithMatchupPolicy(policy),
		app.WithMaxHistoryLimit(cfg.MaxHistoryLimit),
		app.WithReloadSchedule(cfg.ReloadSchedule),
	}
	if st.history != nil {
		opts = append(opts,
			app.WithHistoryStore(st.history),
			app.WithHistoryQueueSize(cfg.HistoryQueueSize),
			app.WithHistoryWorkers(cfg.HistoryWorkers),
		)
	}
	return opts, nil
}

// newMux registers every HTTP surface. The site owns "/" and is registered last.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc)
	apiServer.Register(ctx, mux)

	if cfg.MCPEnabled {
		lineupmcp.Register(ctx, mux, svc, version)
	}

	site.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats. GetStats
// itself refreshes the snapshot size gauge.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["historyQueueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if workerCount, ok := stats["historyWorkers"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
