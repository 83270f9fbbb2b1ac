// Package persistence defines the storage boundaries: a document store
// for the latest analysis per symbol and a relational history of scan
// runs. Both are optional at runtime; the analyzer and scanner degrade
// to in-memory operation when no store is wired.
package persistence

import (
	"context"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// AnalysisStore keeps the most recent analysis document per
// (symbol, period, profile) with a bounded lifetime.
type AnalysisStore interface {
	// SaveAnalysis upserts the document; the previous one is replaced.
	SaveAnalysis(ctx context.Context, analysis domain.Analysis) error

	// LoadAnalysis returns the stored document or (nil, nil) when none
	// exists or it has expired.
	LoadAnalysis(ctx context.Context, symbol string, period domain.Period, profile string) (*domain.Analysis, error)

	// Ping tests connectivity.
	Ping(ctx context.Context) error
}

// ScanRecord summarizes one completed scan run for the history table.
type ScanRecord struct {
	ID           string    `json:"id" db:"id"`
	Universe     string    `json:"universe" db:"universe"`
	Profile      string    `json:"profile" db:"profile"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	DurationMS   int64     `json:"duration_ms" db:"duration_ms"`
	SymbolsTotal int       `json:"symbols_total" db:"symbols_total"`
	SymbolsOK    int       `json:"symbols_ok" db:"symbols_ok"`
	Qualified    int       `json:"qualified" db:"qualified"`
	TopSymbol    *string   `json:"top_symbol,omitempty" db:"top_symbol"`
	TopScore     *float64  `json:"top_score,omitempty" db:"top_score"`
}

// ScanHistoryRepo records scan runs for trend review across sessions.
type ScanHistoryRepo interface {
	// Insert appends a completed run.
	Insert(ctx context.Context, rec ScanRecord) error

	// ListRecent returns the newest runs first.
	ListRecent(ctx context.Context, limit int) ([]ScanRecord, error)

	// ListByUniverse returns the newest runs for one universe.
	ListByUniverse(ctx context.Context, universe string, limit int) ([]ScanRecord, error)

	// Ping tests connectivity.
	Ping(ctx context.Context) error
}
