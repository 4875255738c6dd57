package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/metrics"

	_ "github.com/glebarez/go-sqlite"  // registers the "sqlite" driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		ord               INTEGER NOT NULL,
		name              TEXT NOT NULL,
		position          TEXT NOT NULL DEFAULT '',
		team              TEXT NOT NULL DEFAULT '',
		projected_points  DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_3_avg        DOUBLE PRECISION NOT NULL DEFAULT 0,
		opponent_def_rank INTEGER NOT NULL DEFAULT 16
	)`,
	`CREATE TABLE IF NOT EXISTS analyses (
		id         TEXT PRIMARY KEY,
		requested  TEXT NOT NULL,
		result     TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at)`,
}

// SQLStore keeps players and analysis history in a SQL database. It serves
// as a snapshot Source and as the history writer.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// OpenSQL opens a database for driver ("sqlite" or "pgx") and verifies the
// connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// in-memory databases are per connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewSQLStore wraps db and creates the tables if needed.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	s := &SQLStore{db: db, driver: driver, now: time.Now}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return s, nil
}

// Name implements Source.
func (s *SQLStore) Name() string { return "sql" }

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Load returns every stored player in insertion order.
func (s *SQLStore) Load(ctx context.Context) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT name, position, team, projected_points, last_3_avg, opponent_def_rank
		 FROM players ORDER BY ord`))
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.Name, &p.Position, &p.Team, &p.ProjectedPoints, &p.Last3Avg, &p.OpponentDefRank); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

// ReplacePlayers swaps the stored players for the given set in one transaction.
func (s *SQLStore) ReplacePlayers(ctx context.Context, players []model.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO players (ord, name, position, team, projected_points, last_3_avg, opponent_def_rank)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range players {
		if _, err := stmt.ExecContext(ctx, i, p.Name, p.Position, p.Team, p.ProjectedPoints, p.Last3Avg, p.OpponentDefRank); err != nil {
			return fmt.Errorf("insert %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// SaveAnalysis persists one analysis. An empty ID is replaced by a new UUID.
func (s *SQLStore) SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	requested, err := json.Marshal(nonNilStrings(rec.Requested))
	if err != nil {
		return fmt.Errorf("encode requested: %w", err)
	}
	result, err := json.Marshal(nonNilAnalyzed(rec.Players))
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO analyses (id, requested, result, created_at) VALUES (?, ?, ?, ?)`),
		rec.ID, string(requested), string(result), rec.CreatedAt.UnixNano())
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save_analysis")
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// RecentAnalyses returns up to limit analyses, newest first.
func (s *SQLStore) RecentAnalyses(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, requested, result, created_at FROM analyses
		 ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.AnalysisRecord{}
	for rows.Next() {
		var (
			rec               model.AnalysisRecord
			requested, result string
			createdAt         int64
		)
		if err := rows.Scan(&rec.ID, &requested, &result, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(requested), &rec.Requested); err != nil {
			return nil, fmt.Errorf("decode requested %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(result), &rec.Players); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilAnalyzed(v []model.AnalyzedPlayer) []model.AnalyzedPlayer {
	if v == nil {
		return []model.AnalyzedPlayer{}
	}
	return v
}
