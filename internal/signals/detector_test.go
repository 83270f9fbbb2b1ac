package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

func testContext(t *testing.T) *config.Context {
	t.Helper()
	cfg, err := config.Resolve("neutral", nil)
	require.NoError(t, err)
	return config.NewContext(cfg)
}

func buildFrame(t *testing.T, closeAt func(i int) float64, n int) *indicators.Frame {
	t.Helper()
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := closeAt(i)
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.999,
			High:      c * 1.008,
			Low:       c * 0.992,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	series := domain.BarSeries{Symbol: "TEST", Period: domain.Period1y, Bars: bars}
	cfg, err := config.Resolve("neutral", nil)
	require.NoError(t, err)
	f, err := indicators.Calculate(series, cfg.Indicators)
	require.NoError(t, err)
	return f
}

func TestDetectAllIdempotent(t *testing.T) {
	f := buildFrame(t, func(i int) float64 {
		return 100 + float64(i)*0.2 + 4*math.Sin(float64(i)/5)
	}, 250)
	ctx := testContext(t)

	first := DetectAll(f, ctx)
	second := DetectAll(f, ctx)
	assert.Equal(t, first, second, "detection over a fixed frame must be stable, order included")
}

func TestDetectAllCategoryOrder(t *testing.T) {
	f := buildFrame(t, func(i int) float64 {
		return 100 + float64(i)*0.2 + 4*math.Sin(float64(i)/5)
	}, 250)
	out := DetectAll(f, testContext(t))

	rank := make(map[domain.Category]int, len(domain.CategoryOrder))
	for i, c := range domain.CategoryOrder {
		rank[c] = i
	}
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, rank[out[i-1].Category], rank[out[i].Category],
			"category order violated between %s and %s", out[i-1].Name, out[i].Name)
	}
}

func TestRSIOverboughtOnMonotonicUptrend(t *testing.T) {
	f := buildFrame(t, func(i int) float64 {
		return 100 * math.Pow(1.01, float64(i))
	}, 100)
	out := DetectAll(f, testContext(t))

	var found bool
	for _, s := range out {
		if s.Category == domain.CategoryRSI && s.Strength.IsBearish() {
			found = true
			assert.NotZero(t, s.Value, "RSI signal must carry the triggering reading")
		}
	}
	assert.True(t, found, "a monotonic uptrend should trigger an RSI overbought signal")
}

func TestMAAlignmentBullishOnUptrend(t *testing.T) {
	f := buildFrame(t, func(i int) float64 {
		return 100 + float64(i)
	}, 120)
	out := DetectAll(f, testContext(t))

	names := make(map[string]bool, len(out))
	for _, s := range out {
		names[s.Name] = true
	}
	assert.True(t, names["MA_ALIGNMENT_BULLISH"], "got: %v", names)
}

func TestMAAlignmentBearishOnDowntrend(t *testing.T) {
	f := buildFrame(t, func(i int) float64 {
		return 300 - float64(i)
	}, 120)
	out := DetectAll(f, testContext(t))

	names := make(map[string]bool, len(out))
	for _, s := range out {
		names[s.Name] = true
	}
	assert.True(t, names["MA_ALIGNMENT_BEARISH"])
	assert.False(t, names["MA_ALIGNMENT_BULLISH"])
}

func TestVolumeSpikeDetection(t *testing.T) {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	n := 60
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*0.1
		vol := 1_000_000.0
		if i == n-1 {
			vol = 3_500_000 // final bar spikes well past 3x the average
		}
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c * 1.01, Low: c * 0.99, Close: c,
			Volume: vol,
		}
	}
	series := domain.BarSeries{Symbol: "TEST", Period: domain.Period1y, Bars: bars}
	cfg, err := config.Resolve("neutral", nil)
	require.NoError(t, err)
	f, err := indicators.Calculate(series, cfg.Indicators)
	require.NoError(t, err)

	out := DetectAll(f, testContext(t))
	var extreme bool
	for _, s := range out {
		if s.Name == "VOLUME_EXTREME" {
			extreme = true
			assert.InDelta(t, 3.5, s.Value, 0.5)
		}
	}
	assert.True(t, extreme, "3.5x volume should register as extreme")
}

func TestGapUpDetection(t *testing.T) {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	n := 40
	bars := make([]domain.Bar, n)
	for i := range bars {
		c := 100.0
		o := 100.0
		if i == n-1 {
			o, c = 104, 104.5 // opens 4% above the prior close
		}
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      o, High: c * 1.01, Low: o * 0.99, Close: c,
			Volume: 1_000_000,
		}
	}
	// Nudge closes so timestamps and ordering stay valid but the series
	// is not perfectly flat.
	for i := range bars[:n-1] {
		bars[i].Close += float64(i%5) * 0.01
		bars[i].High = bars[i].Close * 1.01
	}
	series := domain.BarSeries{Symbol: "TEST", Period: domain.Period1y, Bars: bars}
	cfg, err := config.Resolve("neutral", nil)
	require.NoError(t, err)
	f, err := indicators.Calculate(series, cfg.Indicators)
	require.NoError(t, err)

	out := DetectAll(f, testContext(t))
	var gap bool
	for _, s := range out {
		if s.Name == "GAP_UP" {
			gap = true
		}
	}
	assert.True(t, gap)
}
