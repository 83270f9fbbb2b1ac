package scan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/persistence"
)

// fakeProvider serves a synthetic uptrend for every symbol except the
// ones listed in fail, which error with INVALID_SYMBOL.
type fakeProvider struct {
	fail map[string]bool
}

func (p *fakeProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	if p.fail[symbol] {
		return domain.BarSeries{}, domain.NewError(domain.ErrInvalidSymbol,
			fmt.Sprintf("symbol %q not found", symbol))
	}
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, 118)
	level := 100.0
	for i := range bars {
		if i%10 < 8 {
			level += 1.0
		} else {
			level -= 1.5
		}
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      level * 0.996,
			High:      level * 1.008,
			Low:       level * 0.992,
			Close:     level,
			Volume:    1_000_000,
		}
	}
	return domain.BarSeries{Symbol: symbol, Period: period, Bars: bars}, nil
}

// memoryHistory records inserted scan rows.
type memoryHistory struct {
	mu   sync.Mutex
	rows []persistence.ScanRecord
}

func (h *memoryHistory) Insert(ctx context.Context, rec persistence.ScanRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, rec)
	return nil
}

func (h *memoryHistory) ListRecent(ctx context.Context, limit int) ([]persistence.ScanRecord, error) {
	return nil, nil
}

func (h *memoryHistory) ListByUniverse(ctx context.Context, universe string, limit int) ([]persistence.ScanRecord, error) {
	return nil, nil
}

func (h *memoryHistory) Ping(ctx context.Context) error { return nil }

func newTestScanner(fail map[string]bool, history persistence.ScanHistoryRepo) *Scanner {
	analyzer := analyze.New(&fakeProvider{fail: fail})
	return NewScanner(analyzer, history)
}

func TestScanUniverseCollectsQualifiedTrades(t *testing.T) {
	history := &memoryHistory{}
	s := newTestScanner(nil, history)

	result, err := s.ScanUniverse(context.Background(), Options{
		Universe:   "dow30",
		MaxResults: 5,
		Period:     domain.Period1y,
		Profile:    "neutral",
		// The synthetic trend pins the oscillators overbought; mute those
		// detectors so the directional read stays clean.
		Overrides: map[string]float64{
			"rsi_overbought":         95,
			"rsi_extreme_overbought": 99,
			"signal_conflict_pct":    0.9,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 30, result.TotalScanned)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.ScanID)
	assert.Len(t, result.QualifiedTrades, 5, "results must be truncated to MaxResults")
	for _, q := range result.QualifiedTrades {
		assert.NotEmpty(t, q.Symbol)
		assert.Greater(t, q.Plan.Target, q.Plan.Entry)
	}

	// Sorted by (risk quality, score) descending.
	for i := 1; i < len(result.QualifiedTrades); i++ {
		a, b := result.QualifiedTrades[i-1], result.QualifiedTrades[i]
		if a.Plan.RiskQuality == b.Plan.RiskQuality {
			assert.GreaterOrEqual(t, a.Score, b.Score)
		} else {
			assert.Greater(t, a.Plan.RiskQuality.Rank(), b.Plan.RiskQuality.Rank())
		}
	}

	require.Len(t, history.rows, 1)
	rec := history.rows[0]
	assert.Equal(t, result.ScanID, rec.ID)
	assert.Equal(t, "dow30", rec.Universe)
	assert.Equal(t, 30, rec.SymbolsTotal)
	assert.Equal(t, 30, rec.SymbolsOK)
	assert.Equal(t, 5, rec.Qualified)
	require.NotNil(t, rec.TopSymbol)
	assert.Equal(t, result.QualifiedTrades[0].Symbol, *rec.TopSymbol)
}

func TestScanUniversePartialFailure(t *testing.T) {
	s := newTestScanner(map[string]bool{"AAPL": true, "MSFT": true}, nil)

	result, err := s.ScanUniverse(context.Background(), Options{
		Universe: "dow30",
		Period:   domain.Period1y,
		Profile:  "neutral",
	})
	require.NoError(t, err, "per-symbol failures must not abort the scan")

	assert.Equal(t, 30, result.TotalScanned)
	require.Len(t, result.Errors, 2)
	failed := map[string]domain.ErrorCode{}
	for _, e := range result.Errors {
		failed[e.Symbol] = e.Code
	}
	assert.Equal(t, domain.ErrInvalidSymbol, failed["AAPL"])
	assert.Equal(t, domain.ErrInvalidSymbol, failed["MSFT"])
	for _, q := range result.QualifiedTrades {
		assert.NotContains(t, []string{"AAPL", "MSFT"}, q.Symbol)
	}
}

func TestScanUniverseUnknownUniverse(t *testing.T) {
	s := newTestScanner(nil, nil)
	_, err := s.ScanUniverse(context.Background(), Options{Universe: "ftse"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrUnknownUniverse))
	assert.Contains(t, err.Error(), "dow30")
}

func TestFanOutRejectsInvalidPeriod(t *testing.T) {
	// A bad period is a request defect, not thirty per-symbol failures.
	s := newTestScanner(nil, nil)

	result, err := s.ScanUniverse(context.Background(), Options{Universe: "dow30", Period: "fortnight"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidPeriod))
	assert.Empty(t, result.Errors)

	_, err = s.Compare(context.Background(), []string{"NVDA", "AMD"}, "score", Options{Period: "fortnight"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidPeriod))

	_, err = s.Screen(context.Background(), "", []string{"NVDA"}, Criteria{}, Options{Period: "fortnight"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidPeriod))
}

func TestResolveUniverseCopiesList(t *testing.T) {
	a, err := ResolveUniverse("crypto")
	require.NoError(t, err)
	a[0] = "MUTATED"

	b, err := ResolveUniverse("crypto")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USD", b[0], "callers must not be able to mutate the universe")
}

func TestCompareRanksByMetric(t *testing.T) {
	s := newTestScanner(nil, nil)

	result, err := s.Compare(context.Background(), []string{"NVDA", "AMD", "INTC"}, "score", Options{
		Period:  domain.Period1y,
		Profile: "neutral",
	})
	require.NoError(t, err)

	assert.Equal(t, "score", result.Metric)
	require.Len(t, result.Rows, 3)
	require.NotNil(t, result.Winner)
	assert.Equal(t, result.Rows[0].Symbol, result.Winner.Symbol)
	for i := 1; i < len(result.Rows); i++ {
		assert.GreaterOrEqual(t, result.Rows[i-1].Value, result.Rows[i].Value)
	}
}

func TestCompareNoRowsLeavesWinnerNil(t *testing.T) {
	s := newTestScanner(map[string]bool{"ONE": true, "TWO": true}, nil)

	result, err := s.Compare(context.Background(), []string{"ONE", "TWO"}, "score", Options{
		Period: domain.Period1y,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Nil(t, result.Winner, "no winner without rows")
	assert.Len(t, result.Errors, 2)
}

func TestCompareUnknownMetric(t *testing.T) {
	s := newTestScanner(nil, nil)
	_, err := s.Compare(context.Background(), []string{"NVDA"}, "sharpe", Options{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidOverride))
	assert.Contains(t, err.Error(), "score")
}

func TestScreenFiltersBySymbolList(t *testing.T) {
	s := newTestScanner(nil, nil)

	// The synthetic uptrend is bullish everywhere; an impossible RSI
	// ceiling filters everything, no ceiling keeps everything.
	result, err := s.Screen(context.Background(), "", []string{"NVDA", "AMD"}, Criteria{RSIMax: 1}, Options{
		Period:  domain.Period1y,
		Profile: "neutral",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalScanned)
	assert.Empty(t, result.Matches)

	result, err = s.Screen(context.Background(), "", []string{"NVDA", "AMD"}, Criteria{MinBullish: 1}, Options{
		Period:  domain.Period1y,
		Profile: "neutral",
	})
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.GreaterOrEqual(t, m.Bullish, 1)
		assert.Greater(t, m.TopScore, 0.0)
		assert.NotEmpty(t, m.TopSignal)
	}
}

func TestScreenZeroCriteriaMatchesAll(t *testing.T) {
	s := newTestScanner(nil, nil)

	result, err := s.Screen(context.Background(), "", []string{"NVDA"}, Criteria{}, Options{
		Period: domain.Period1y,
	})
	require.NoError(t, err)
	assert.Len(t, result.Matches, 1, "zero-value criteria disable every filter")
}

func TestScreenUnknownUniverse(t *testing.T) {
	s := newTestScanner(nil, nil)
	_, err := s.Screen(context.Background(), "dax", nil, Criteria{}, Options{})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrUnknownUniverse))
}
