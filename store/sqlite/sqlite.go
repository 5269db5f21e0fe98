/*
Package sqlite provides a SQLite-backed cache of fetched index observations.

PURPOSE:
  Persists the raw (series_id, period, value) observations fetched from the
  upstream API so that a calculation can still run while the API is down.
  This is a cache of published inputs only; computed adjustments are never
  stored.

KEY TABLE:
  observations:  One row per (series_id, period_start), upserted on refresh.
                 Values are stored as decimal strings to avoid float drift.

UPSERT SEMANTICS:
  Unlike an append-only ledger, re-fetching the same series overwrites
  cached rows: the upstream source occasionally re-publishes a month, and
  the latest published value is the official one.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rentadjust.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - provider/cached.go: The consumer of this cache
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/provider"
	"github.com/warp/adjustment-engine/series"
)

// Store caches index observations in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store satisfies the provider's cache contract.
var _ provider.ObservationCache = (*Store)(nil)

// New creates a store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cached observations from the upstream series API
	CREATE TABLE IF NOT EXISTS observations (
		series_id    TEXT NOT NULL,
		period_start TEXT NOT NULL,  -- YYYY-MM
		raw_value    TEXT NOT NULL,  -- decimal string, exactly as published
		fetched_at   TEXT NOT NULL,
		PRIMARY KEY (series_id, period_start)
	);

	CREATE INDEX IF NOT EXISTS idx_observations_series_period
		ON observations(series_id, period_start DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveObservations upserts the observations for a series. The whole batch
// is written in one transaction so a refresh is all-or-nothing.
func (s *Store) SaveObservations(ctx context.Context, seriesID string, obs []series.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (series_id, period_start, raw_value, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(series_id, period_start) DO UPDATE SET
			raw_value = excluded.raw_value,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, seriesID, o.Period.String(), o.Raw.String(), now); err != nil {
			return fmt.Errorf("upsert observation %s: %w", o.Period, err)
		}
	}
	return tx.Commit()
}

// LoadObservations returns all cached observations for a series, oldest
// first. An empty slice means nothing is cached.
func (s *Store) LoadObservations(ctx context.Context, seriesID string) ([]series.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT period_start, raw_value
		FROM observations
		WHERE series_id = ?
		ORDER BY period_start ASC`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	defer rows.Close()

	var obs []series.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// LatestPeriod returns the most recent cached month for a series, or the
// zero Month when nothing is cached.
func (s *Store) LatestPeriod(ctx context.Context, seriesID string) (series.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var periodStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT period_start
		FROM observations
		WHERE series_id = ?
		ORDER BY period_start DESC
		LIMIT 1`, seriesID).Scan(&periodStr)
	if err == sql.ErrNoRows {
		return series.Month{}, nil
	}
	if err != nil {
		return series.Month{}, fmt.Errorf("latest period: %w", err)
	}
	return series.ParseMonth(periodStr)
}

func scanObservation(rows *sql.Rows) (series.Observation, error) {
	var periodStr, rawStr string
	if err := rows.Scan(&periodStr, &rawStr); err != nil {
		return series.Observation{}, fmt.Errorf("scan observation: %w", err)
	}

	period, err := series.ParseMonth(periodStr)
	if err != nil {
		return series.Observation{}, fmt.Errorf("corrupt period in cache: %w", err)
	}
	raw, err := decimal.NewFromString(rawStr)
	if err != nil {
		return series.Observation{}, fmt.Errorf("corrupt value in cache for %s: %w", period, err)
	}
	return series.Observation{Period: period, Raw: raw}, nil
}
