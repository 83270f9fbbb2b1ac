// Package postgres implements the scan history repository on
// PostgreSQL via sqlx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/marketlens/marketlens/internal/persistence"
)

// Schema for the scans table; applied out of band.
//
//	CREATE TABLE IF NOT EXISTS scans (
//	    id            UUID PRIMARY KEY,
//	    universe      TEXT NOT NULL,
//	    profile       TEXT NOT NULL,
//	    started_at    TIMESTAMPTZ NOT NULL,
//	    duration_ms   BIGINT NOT NULL,
//	    symbols_total INT NOT NULL,
//	    symbols_ok    INT NOT NULL,
//	    qualified     INT NOT NULL,
//	    top_symbol    TEXT,
//	    top_score     DOUBLE PRECISION
//	);
//	CREATE INDEX IF NOT EXISTS scans_universe_started
//	    ON scans (universe, started_at DESC);

type scanRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScanRepo creates a scan history repository over an open pool.
func NewScanRepo(db *sqlx.DB, timeout time.Duration) persistence.ScanHistoryRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &scanRepo{db: db, timeout: timeout}
}

// Insert appends a completed scan run.
func (r *scanRepo) Insert(ctx context.Context, rec persistence.ScanRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO scans (id, universe, profile, started_at, duration_ms,
		                   symbols_total, symbols_ok, qualified, top_symbol, top_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Universe, rec.Profile, rec.StartedAt, rec.DurationMS,
		rec.SymbolsTotal, rec.SymbolsOK, rec.Qualified, rec.TopSymbol, rec.TopScore)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("duplicate scan id %s: %w", rec.ID, err)
		}
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

// ListRecent returns the newest runs first.
func (r *scanRepo) ListRecent(ctx context.Context, limit int) ([]persistence.ScanRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, universe, profile, started_at, duration_ms,
		       symbols_total, symbols_ok, qualified, top_symbol, top_score
		FROM scans
		ORDER BY started_at DESC
		LIMIT $1`

	var records []persistence.ScanRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return records, nil
}

// ListByUniverse returns the newest runs for one universe.
func (r *scanRepo) ListByUniverse(ctx context.Context, universe string, limit int) ([]persistence.ScanRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, universe, profile, started_at, duration_ms,
		       symbols_total, symbols_ok, qualified, top_symbol, top_score
		FROM scans
		WHERE universe = $1
		ORDER BY started_at DESC
		LIMIT $2`

	var records []persistence.ScanRecord
	if err := r.db.SelectContext(ctx, &records, query, universe, limit); err != nil {
		return nil, fmt.Errorf("list scans for %s: %w", universe, err)
	}
	return records, nil
}

// Ping tests connectivity.
func (r *scanRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// Open connects a pool with sane defaults for a CLI-sized process.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
