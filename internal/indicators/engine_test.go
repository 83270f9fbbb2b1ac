package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

func testConfig() config.IndicatorConfig {
	cfg, _ := config.Resolve("neutral", nil)
	return cfg.Indicators
}

// syntheticSeries builds n daily bars from a close generator; highs and
// lows bracket the close, volume is flat unless the generator says
// otherwise.
func syntheticSeries(n int, closeAt func(i int) float64) domain.BarSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := closeAt(i)
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.998,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return domain.BarSeries{Symbol: "TEST", Period: domain.Period1y, Bars: bars}
}

func trendingSeries(n int) domain.BarSeries {
	return syntheticSeries(n, func(i int) float64 {
		base := 100 + float64(i)*0.3
		return base + 3*math.Sin(float64(i)/4)
	})
}

func TestCalculateWarmupDefinedness(t *testing.T) {
	series := trendingSeries(250)
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	cases := []struct {
		column string
		warmup int
	}{
		{SMA20, 19},
		{SMA200, 199},
		{EMA50, 49},
		{RSI, 14},
		{ATR, 14},
		{BBUpper, 19},
		{VolumeSMA20, 19},
	}
	for _, tc := range cases {
		t.Run(tc.column, func(t *testing.T) {
			require.True(t, f.Has(tc.column))
			for i := 0; i < tc.warmup; i++ {
				assert.False(t, f.Defined(tc.column, i), "position %d should be undefined", i)
			}
			for i := tc.warmup; i < f.Len(); i++ {
				assert.True(t, f.Defined(tc.column, i), "position %d should be defined", i)
			}
		})
	}
}

func TestCalculateShortSeriesDropsLongIndicators(t *testing.T) {
	series := trendingSeries(60)
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	assert.True(t, f.Has(SMA50))
	assert.False(t, f.Has(SMA100), "100-bar SMA needs 100 bars")
	assert.False(t, f.Has(SMA200))
	assert.True(t, f.Has(RSI))
}

func TestCalculateTooShort(t *testing.T) {
	series := trendingSeries(1)
	_, err := Calculate(series, testConfig())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInsufficientData))
}

func TestRSIBoundsAndMonotonicUptrend(t *testing.T) {
	// Strictly rising closes: average loss is zero over every window, the
	// epsilon guard must keep RSI finite and near 100.
	series := syntheticSeries(100, func(i int) float64 {
		return 100 * math.Pow(1.01, float64(i))
	})
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	for i := 0; i < f.Len(); i++ {
		v, ok := f.Value(RSI, i)
		if !ok {
			continue
		}
		require.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	last, ok := f.Last(RSI)
	require.True(t, ok)
	assert.Greater(t, last, 95.0, "monotonic uptrend should pin RSI near 100")
}

func TestRSIDowntrendStaysLow(t *testing.T) {
	series := syntheticSeries(100, func(i int) float64 {
		return 100 * math.Pow(0.99, float64(i))
	})
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	last, ok := f.Last(RSI)
	require.True(t, ok)
	assert.Less(t, last, 5.0)
}

func TestBollingerOrdering(t *testing.T) {
	series := trendingSeries(120)
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	for i := 0; i < f.Len(); i++ {
		lower, okL := f.Value(BBLower, i)
		middle, okM := f.Value(BBMiddle, i)
		upper, okU := f.Value(BBUpper, i)
		if !okL || !okM || !okU {
			continue
		}
		assert.LessOrEqual(t, lower, middle, "position %d", i)
		assert.LessOrEqual(t, middle, upper, "position %d", i)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	series := trendingSeries(150)
	a, err := Calculate(series, testConfig())
	require.NoError(t, err)
	b, err := Calculate(series, testConfig())
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestSnapshotUsesCanonicalNames(t *testing.T) {
	series := trendingSeries(250)
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	snap := f.Snapshot()
	assert.Contains(t, snap, BBMiddle)
	assert.NotContains(t, snap, "BB_Mid")
	assert.Contains(t, snap, RSI)
	assert.Contains(t, snap, RealizedVol)
}

func TestRealizedVolPositive(t *testing.T) {
	series := trendingSeries(100)
	f, err := Calculate(series, testConfig())
	require.NoError(t, err)

	v, ok := f.Last(RealizedVol)
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
}
