package lineupcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/logger"
)

type job struct {
	c   *Case
	idx int
}

// Run executes a complete consistency check and returns the collected stats.
// The returned error joins every verification failure.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("lineupcheck")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting lineup consistency check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("cases", config.Cases),
		logger.Int("repeats", config.Repeats),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return stats, err
	}

	// Step 2: Fetch the snapshot
	players, err := fetchPlayers(ctx, client, config.BaseURL)
	if err != nil {
		return stats, fmt.Errorf("fetch players: %w", err)
	}
	if len(players) == 0 {
		return stats, ErrNoPlayers
	}
	stats.Players = len(players)

	// Step 3: Generate and submit cases concurrently
	cases := generateCases(players, config.Cases, config.Seed)
	stats.Cases = len(cases)
	submit(ctx, log, client, config, cases, stats)

	// Step 4: Verify against a local analysis of the same snapshot
	scorer := scoring.NewScorer(
		scoring.WithWeights(config.Weights),
		scoring.WithLeagueSize(config.League),
		scoring.WithMatchupPolicy(config.Policy),
	)
	v := newVerifier(players, scorer)
	var errs []error
	for _, c := range cases {
		if err := v.verifyCase(ctx, c); err != nil {
			stats.Mismatches++
			if config.Verbose {
				log.Warn(ctx, "case failed", logger.Int("case", c.ID), logger.Strings("names", c.Names), logger.Error(err))
			}
			errs = append(errs, err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Failed > 0 {
		errs = append(errs, fmt.Errorf("%w: %d of %d submissions failed", ErrRequest, stats.Failed, stats.Submitted))
	}
	return stats, errors.Join(errs...)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// submit sends every case Repeats times through a bounded worker pool.
func submit(ctx context.Context, log logger.Logger, client *HTTPClient, config *Config, cases []*Case, stats *Stats) {
	repeats := max(config.Repeats, 1)
	workers := max(config.Workers, 1)

	// results[i][r] is the body of repeat r of case i
	results := make([][]string, len(cases))
	for i := range results {
		results[i] = make([]string, repeats)
	}

	var submitted, successful, failed int64
	jobs := make(chan job, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				body, err := analyze(ctx, client, config.BaseURL, j.c.Names)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "analyze failed", logger.Int("case", j.c.ID), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&successful, 1)
				results[j.c.ID][j.idx] = string(body)
			}
		}()
	}

	stopProgress := startProgress(ctx, log, config.Progress, len(cases)*repeats, &submitted)

	// interleave repeats so identical requests run concurrently
	go func() {
		defer close(jobs)
		for r := 0; r < repeats; r++ {
			for _, c := range cases {
				select {
				case <-ctx.Done():
					return
				case jobs <- job{c: c, idx: r}:
				}
			}
		}
	}()

	wg.Wait()
	stopProgress()

	for i, c := range cases {
		for _, body := range results[i] {
			if body != "" {
				c.Results = append(c.Results, body)
			}
		}
	}
	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Failed = int(atomic.LoadInt64(&failed))
}

func startProgress(ctx context.Context, log logger.Logger, every time.Duration, total int, submitted *int64) func() {
	if every <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Info(ctx, "progress", logger.Int("submitted", int(atomic.LoadInt64(submitted))), logger.Int("total", total))
			}
		}
	}()
	return func() { close(done) }
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("cases", stats.Cases),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", requestsPerSecond),
	)
}
