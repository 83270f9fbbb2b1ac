package risk

import (
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// VolatilityReading is the ATR-relative volatility classification that
// opens the qualification pipeline.
type VolatilityReading struct {
	Regime domain.VolatilityRegime
	ATR    float64
	ATRPct float64 // ATR as percent of the last close
}

// ClassifyVolatility computes ATR% and buckets it against the profile
// bounds. The ok result is false when ATR or price is unavailable.
func ClassifyVolatility(f *indicators.Frame, ctx *config.Context) (VolatilityReading, bool) {
	atr, ok := f.Last(indicators.ATR)
	if !ok {
		return VolatilityReading{}, false
	}
	price := f.LastClose()
	if price <= 0 {
		return VolatilityReading{}, false
	}

	atrPct := atr / price * 100
	reading := VolatilityReading{ATR: atr, ATRPct: atrPct}
	switch {
	case atrPct < ctx.VolatilityLow():
		reading.Regime = domain.VolatilityLow
	case atrPct > ctx.VolatilityHigh():
		reading.Regime = domain.VolatilityHigh
	default:
		reading.Regime = domain.VolatilityMedium
	}
	return reading, true
}

// SelectTimeframe picks the plan horizon. Swing is the default; day or
// scalp apply only on an explicit caller hint or an intraday period.
func SelectTimeframe(period domain.Period, hint domain.Timeframe) domain.Timeframe {
	if hint == domain.TimeframeDay || hint == domain.TimeframeScalp {
		return hint
	}
	if period.IsIntraday() {
		return domain.TimeframeDay
	}
	return domain.TimeframeSwing
}
