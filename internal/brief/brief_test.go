package brief

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
)

type fakeProvider struct {
	fail map[string]bool
}

func (p *fakeProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	if p.fail[symbol] {
		return domain.BarSeries{}, domain.NewError(domain.ErrDataFetch, "vendor unavailable")
	}
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, 120)
	c := 100.0
	for i := range bars {
		c += 0.3
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.998,
			High:      c * 1.008,
			Low:       c * 0.992,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return domain.BarSeries{Symbol: symbol, Period: period, Bars: bars}, nil
}

func newTestComposer(p *fakeProvider) *Composer {
	return NewComposer(analyze.New(p), 4)
}

func TestComposeCoversIndicesAndWatchlist(t *testing.T) {
	c := newTestComposer(&fakeProvider{})

	b, err := c.Compose(context.Background(), []string{"AAPL", "MSFT"}, "us", domain.Period1y, "neutral")
	require.NoError(t, err)

	assert.Equal(t, "us", b.Region)
	assert.Empty(t, b.Errors)
	require.Len(t, b.Indices, 4)
	require.Len(t, b.Watchlist, 2)

	// Indices sorted by symbol; the uptrend reads as up everywhere.
	for i, reading := range b.Indices {
		if i > 0 {
			assert.Less(t, b.Indices[i-1].Symbol, reading.Symbol)
		}
		assert.Equal(t, "up", reading.Trend)
		assert.Greater(t, reading.Price, 0.0)
	}
	for _, reading := range b.Watchlist {
		assert.Greater(t, reading.TopScore, 0.0)
		assert.NotEmpty(t, reading.TopSignal)
	}
}

func TestComposeUnknownRegionFallsBackToUS(t *testing.T) {
	c := newTestComposer(&fakeProvider{})
	b, err := c.Compose(context.Background(), []string{"AAPL"}, "mars", domain.Period1y, "neutral")
	require.NoError(t, err)
	assert.Equal(t, "us", b.Region)
	assert.Len(t, b.Indices, 4)
}

func TestComposeEmptyWatchlistUsesDefault(t *testing.T) {
	c := newTestComposer(&fakeProvider{})
	b, err := c.Compose(context.Background(), nil, "us", domain.Period1y, "neutral")
	require.NoError(t, err)
	assert.Len(t, b.Watchlist, len(DefaultWatchlist))
}

func TestComposeRejectsInvalidPeriod(t *testing.T) {
	c := newTestComposer(&fakeProvider{})
	_, err := c.Compose(context.Background(), []string{"AAPL"}, "us", "fortnight", "neutral")
	require.Error(t, err, "a bad period must fail the request, not every symbol")
	assert.True(t, domain.IsCode(err, domain.ErrInvalidPeriod))
}

func TestComposeRecordsPerSymbolFailures(t *testing.T) {
	c := newTestComposer(&fakeProvider{fail: map[string]bool{"TSLA": true}})

	b, err := c.Compose(context.Background(), []string{"AAPL", "TSLA"}, "us", domain.Period1y, "neutral")
	require.NoError(t, err, "a failed symbol must not abort the brief")

	require.Len(t, b.Errors, 1)
	assert.Equal(t, "TSLA", b.Errors[0].Symbol)
	assert.Equal(t, domain.ErrDataFetch, b.Errors[0].Code)
	assert.Len(t, b.Watchlist, 1)
}

func TestIndexReadingTrend(t *testing.T) {
	a := domain.Analysis{
		Symbol: "SPY", Price: 100,
		Indicators: map[string]float64{"SMA_50": 95, "RSI": 60},
	}
	r := indexReading(a)
	assert.Equal(t, "up", r.Trend)
	assert.Equal(t, 60.0, r.RSI)

	a.Indicators["SMA_50"] = 105
	assert.Equal(t, "down", indexReading(a).Trend)

	a.Indicators["SMA_50"] = 100
	assert.Equal(t, "flat", indexReading(a).Trend)
}
