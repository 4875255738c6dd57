package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/internal/lineupcheck"
	"github.com/okian/lineup/pkg/logger"
)

// Default configuration constants.
const (
	defaultCases       = 200
	defaultRepeats     = 5
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultRunTimeout  = 5 * time.Minute
	defaultProgressLog = 2 * time.Second
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		cases     = flag.Int("cases", defaultCases, "Number of distinct player subsets to generate")
		repeats   = flag.Int("repeats", defaultRepeats, "Times each subset is submitted")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for subset generation")
		projected = flag.Float64("weight-projected", scoring.DefaultProjectedWeight, "Projected points weight configured on the service")
		recent    = flag.Float64("weight-recent", scoring.DefaultRecentWeight, "Recent average weight configured on the service")
		matchup   = flag.Float64("weight-matchup", scoring.DefaultMatchupWeight, "Matchup weight configured on the service")
		league    = flag.Int("league-size", scoring.DefaultLeagueSize, "League size configured on the service")
		policy    = flag.String("def-rank-policy", string(scoring.PolicyAccept), "Opponent rank policy configured on the service")
		logFormat = flag.String("log-format", "text", "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every failed case")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	p, err := scoring.ParseMatchupPolicy(*policy)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &lineupcheck.Config{
		BaseURL:  *baseURL,
		Cases:    *cases,
		Repeats:  *repeats,
		Workers:  *workers,
		Timeout:  *timeout,
		Seed:     *seed,
		Weights:  scoring.Weights{Projected: *projected, Recent: *recent, Matchup: *matchup},
		League:   *league,
		Policy:   p,
		Verbose:  *verbose,
		Progress: defaultProgressLog,
	}

	if _, err := lineupcheck.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "consistency check failed", logger.Any("seed", *seed), logger.Error(err))
		cancel()
		os.Exit(1)
	}
	logger.Get().Info(ctx, "consistency check passed", logger.Any("seed", *seed))
}
