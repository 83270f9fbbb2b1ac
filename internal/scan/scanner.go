// Package scan is the fan-out layer: universe scans, comparisons, and
// screens that run the per-symbol core concurrently under a bounded
// worker pool. Per-symbol failures are captured as records, never
// raised; an operation completes as long as the universe resolved.
package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/metrics"
	"github.com/marketlens/marketlens/internal/persistence"
)

// Options bound a universe scan.
type Options struct {
	Universe      string
	MaxResults    int
	Period        domain.Period
	Profile       string
	Overrides     map[string]float64
	UseAI         bool
	Workers       int           // 0 means DefaultWorkers
	SymbolTimeout time.Duration // 0 means DefaultSymbolTimeout
}

const (
	DefaultWorkers       = 10
	DefaultSymbolTimeout = 30 * time.Second
	DefaultMaxResults    = 10
)

// Scanner fans the per-symbol core out over symbol lists.
type Scanner struct {
	analyzer *analyze.Analyzer
	history  persistence.ScanHistoryRepo // optional
}

// NewScanner wires a scanner over the shared analyzer. history may be
// nil; runs are then not recorded.
func NewScanner(analyzer *analyze.Analyzer, history persistence.ScanHistoryRepo) *Scanner {
	return &Scanner{analyzer: analyzer, history: history}
}

// symbolOutcome is what one worker hands back for one symbol.
type symbolOutcome struct {
	symbol     string
	analysis   domain.Analysis
	assessment domain.RiskAssessment
	err        error
}

// ScanUniverse runs the core for every symbol in the universe and keeps
// those whose risk qualifier emitted at least one plan, sorted by
// (risk quality, score desc) and truncated to MaxResults.
func (s *Scanner) ScanUniverse(ctx context.Context, opts Options) (domain.ScanResult, error) {
	symbols, err := ResolveUniverse(opts.Universe)
	if err != nil {
		return domain.ScanResult{}, err
	}
	if opts.Period, err = domain.ParsePeriod(string(opts.Period)); err != nil {
		return domain.ScanResult{}, err
	}

	started := time.Now()
	result := domain.ScanResult{
		ScanID:       uuid.NewString(),
		Universe:     opts.Universe,
		TotalScanned: len(symbols),
		Timestamp:    started.UTC(),
	}

	outcomes := s.fanOut(ctx, symbols, opts, func(ctx context.Context, req analyze.Request) symbolOutcome {
		analysis, assessment, err := s.analyzer.AnalyzeAndPlan(ctx, req)
		return symbolOutcome{symbol: req.Symbol, analysis: analysis, assessment: assessment, err: err}
	})

	for _, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, symbolError(out.symbol, out.err))
			continue
		}
		if !out.assessment.Actionable() {
			continue
		}
		result.QualifiedTrades = append(result.QualifiedTrades, domain.QualifiedTrade{
			Symbol:    out.symbol,
			Plan:      out.assessment.Plans[0],
			Score:     out.analysis.TopScore(),
			Signals:   len(out.analysis.Signals),
			Timestamp: out.analysis.Timestamp,
		})
	}

	sort.SliceStable(result.QualifiedTrades, func(i, j int) bool {
		a, b := result.QualifiedTrades[i], result.QualifiedTrades[j]
		if a.Plan.RiskQuality != b.Plan.RiskQuality {
			return a.Plan.RiskQuality.Rank() > b.Plan.RiskQuality.Rank()
		}
		return a.Score > b.Score
	})
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	if len(result.QualifiedTrades) > limit {
		result.QualifiedTrades = result.QualifiedTrades[:limit]
	}

	result.DurationSeconds = time.Since(started).Seconds()
	metrics.ScanDuration.WithLabelValues(opts.Universe).Observe(result.DurationSeconds)
	log.Info().Str("scan_id", result.ScanID).Str("universe", opts.Universe).
		Int("scanned", result.TotalScanned).Int("qualified", len(result.QualifiedTrades)).
		Int("errors", len(result.Errors)).Float64("seconds", result.DurationSeconds).
		Msg("universe scan complete")

	s.record(ctx, opts, result, started)
	return result, nil
}

// fanOut dispatches one task per symbol onto a bounded worker pool and
// gathers the outcomes. Sibling tasks are isolated: a failure becomes a
// record, only the caller's context cancels the pool.
func (s *Scanner) fanOut(ctx context.Context, symbols []string, opts Options,
	task func(context.Context, analyze.Request) symbolOutcome) []symbolOutcome {

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}
	timeout := opts.SymbolTimeout
	if timeout <= 0 {
		timeout = DefaultSymbolTimeout
	}

	jobs := make(chan string)
	results := make(chan symbolOutcome, len(symbols))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				symCtx, cancel := context.WithTimeout(ctx, timeout)
				results <- task(symCtx, analyze.Request{
					Symbol:    symbol,
					Period:    opts.Period,
					Profile:   opts.Profile,
					Overrides: opts.Overrides,
					UseAI:     opts.UseAI,
				})
				cancel()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case jobs <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	outcomes := make([]symbolOutcome, 0, len(symbols))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// record appends the run to the scan history, best-effort.
func (s *Scanner) record(ctx context.Context, opts Options, result domain.ScanResult, started time.Time) {
	if s.history == nil {
		return
	}
	profile := opts.Profile
	if profile == "" {
		profile = "neutral"
	}
	rec := persistence.ScanRecord{
		ID:           result.ScanID,
		Universe:     result.Universe,
		Profile:      profile,
		StartedAt:    started.UTC(),
		DurationMS:   int64(result.DurationSeconds * 1000),
		SymbolsTotal: result.TotalScanned,
		SymbolsOK:    result.TotalScanned - len(result.Errors),
		Qualified:    len(result.QualifiedTrades),
	}
	if len(result.QualifiedTrades) > 0 {
		top := result.QualifiedTrades[0]
		rec.TopSymbol = &top.Symbol
		rec.TopScore = &top.Score
	}
	if err := s.history.Insert(ctx, rec); err != nil {
		log.Warn().Err(err).Str("scan_id", result.ScanID).Msg("scan history insert failed")
	}
}

// symbolError converts a core failure into the per-symbol record and
// bumps the metric.
func symbolError(symbol string, err error) domain.SymbolError {
	code := domain.CodeOf(err)
	metrics.ScanSymbolErrors.WithLabelValues(string(code)).Inc()
	return domain.SymbolError{Symbol: symbol, Code: code, Message: err.Error()}
}
