// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Player sources.
const (
	SourceBuiltin = "builtin"
	SourceJSON    = "json"
	SourceSQL     = "sql"
	SourceRedis   = "redis"
)

// SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PlayerSource selects where the snapshot is loaded from: builtin, json, sql, redis.
	PlayerSource string `koanf:"player_source"`

	// PlayersFile is the JSON array read by the json source.
	PlayersFile string `koanf:"players_file"`

	// SQLDriver is sqlite or pgx; SQLDSN is passed to sql.Open.
	SQLDriver string `koanf:"sql_driver"`
	SQLDSN    string `koanf:"sql_dsn"`

	// Redis source settings. RedisKey holds a JSON array of player records.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// ReloadSchedule is a cron spec (e.g. "@every 10m"); empty disables scheduled reloads.
	ReloadSchedule string `koanf:"reload_schedule"`

	// DefRankPolicy handles opponent ranks outside [1, LeagueSize]: accept, clamp, reject.
	DefRankPolicy string `koanf:"def_rank_policy"`

	// LeagueSize is the number of teams the matchup term inverts against.
	LeagueSize int `koanf:"league_size"`

	// Score weights.
	WeightProjected float64 `koanf:"weight_projected"`
	WeightRecent    float64 `koanf:"weight_recent"`
	WeightMatchup   float64 `koanf:"weight_matchup"`

	// HistoryEnabled persists each analysis to the SQL store off the request path.
	HistoryEnabled   bool `koanf:"history_enabled"`
	HistoryQueueSize int  `koanf:"history_queue_size"`
	HistoryWorkers   int  `koanf:"history_workers"`

	// MaxHistoryLimit caps GET /api/history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// MCPEnabled mounts the Model Context Protocol endpoint at /mcp.
	MCPEnabled bool `koanf:"mcp_enabled"`
}

// New creates a Config with defaults. Context is accepted first to match the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		PlayerSource:     SourceBuiltin,
		SQLDriver:        DriverSQLite,
		RedisAddr:        "localhost:6379",
		RedisKey:         "lineup:players",
		DefRankPolicy:    "accept",
		LeagueSize:       32,
		WeightProjected:  0.40,
		WeightRecent:     0.35,
		WeightMatchup:    0.25,
		HistoryQueueSize: 1024,
		HistoryWorkers:   2,
		MaxHistoryLimit:  100,
		MCPEnabled:       true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.PlayerSource {
	case SourceBuiltin, SourceRedis:
	case SourceJSON:
		if c.PlayersFile == "" {
			return fmt.Errorf("%w: players_file is required for the json source", ErrInvalidConfig)
		}
	case SourceSQL:
		if c.SQLDSN == "" {
			return fmt.Errorf("%w: sql_dsn is required for the sql source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown player_source %q", ErrInvalidConfig, c.PlayerSource)
	}
	if c.usesSQL() {
		if c.SQLDriver != DriverSQLite && c.SQLDriver != DriverPostgres {
			return fmt.Errorf("%w: unknown sql_driver %q", ErrInvalidConfig, c.SQLDriver)
		}
		if c.SQLDSN == "" {
			return fmt.Errorf("%w: sql_dsn is required when history is enabled", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.DefRankPolicy)) {
	case "", "accept", "clamp", "reject":
	default:
		return fmt.Errorf("%w: unknown def_rank_policy %q", ErrInvalidConfig, c.DefRankPolicy)
	}
	if c.LeagueSize <= 0 {
		return fmt.Errorf("%w: league_size must be positive", ErrInvalidConfig)
	}
	if c.WeightProjected < 0 || c.WeightRecent < 0 || c.WeightMatchup < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	}
	if c.HistoryEnabled && (c.HistoryQueueSize <= 0 || c.HistoryWorkers <= 0) {
		return fmt.Errorf("%w: history_queue_size and history_workers must be positive", ErrInvalidConfig)
	}
	if c.MaxHistoryLimit <= 0 {
		return fmt.Errorf("%w: max_history_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// UsesSQL reports whether an SQL connection must be opened.
func (c *Config) UsesSQL() bool { return c.usesSQL() }

func (c *Config) usesSQL() bool {
	return c.PlayerSource == SourceSQL || c.HistoryEnabled
}
