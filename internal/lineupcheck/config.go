// Package lineupcheck drives concurrent analyze requests against a running
// lineup service and verifies that its answers are consistent.
package lineupcheck

import (
	"time"

	"github.com/okian/lineup/internal/domain/scoring"
)

// Config holds configuration for a consistency run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Cases    int           // Number of distinct player subsets
	Repeats  int           // Times each subset is submitted
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for subset generation
	Weights  scoring.Weights
	League   int
	Policy   scoring.MatchupPolicy
	Verbose  bool
	Progress time.Duration // Interval between progress log lines; zero disables
}

// Stats holds run statistics.
type Stats struct {
	Players    int
	Cases      int
	Submitted  int
	Successful int
	Failed     int
	Mismatches int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Case is one generated request and the responses it received.
type Case struct {
	ID      int
	Names   []string
	Results []string // raw JSON bodies, one per successful submission
}
