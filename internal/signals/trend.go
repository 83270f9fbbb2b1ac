package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// trendDetector combines ADX strength with price position to call a
// standing trend.
type trendDetector struct{}

func (trendDetector) Category() domain.Category { return domain.CategoryTrend }

func (trendDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	adx, ok := f.Last(indicators.ADX)
	if !ok {
		return nil
	}
	sma50, okSMA := f.Last(indicators.SMA50)
	price := f.LastClose()

	var out []domain.Signal
	switch {
	case adx > ctx.ADXTrending() && okSMA && price > sma50:
		out = append(out, domain.Signal{
			Name:        "STRONG_UPTREND",
			Description: fmt.Sprintf("ADX %.1f above %.0f with price above the 50-day SMA", adx, ctx.ADXTrending()),
			Strength:    domain.StrongBullish,
			Category:    domain.CategoryTrend,
			Value:       adx,
		})
	case adx > ctx.ADXTrending() && okSMA && price < sma50:
		out = append(out, domain.Signal{
			Name:        "STRONG_DOWNTREND",
			Description: fmt.Sprintf("ADX %.1f above %.0f with price below the 50-day SMA", adx, ctx.ADXTrending()),
			Strength:    domain.StrongBearish,
			Category:    domain.CategoryTrend,
			Value:       adx,
		})
	case adx < ctx.ADXNoTrend():
		out = append(out, domain.Signal{
			Name:        "NO_TREND",
			Description: fmt.Sprintf("ADX %.1f below %.0f, range-bound conditions", adx, ctx.ADXNoTrend()),
			Strength:    domain.Neutral,
			Category:    domain.CategoryTrend,
			Value:       adx,
		})
	}
	return out
}

// adxDetector reads the directional lines themselves: DI crosses and ADX
// slope.
type adxDetector struct{}

func (adxDetector) Category() domain.Category { return domain.CategoryADX }

func (adxDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	var out []domain.Signal

	if up, v := crossedAbove(f, indicators.PlusDI, indicators.MinusDI); up {
		out = append(out, domain.Signal{
			Name:        "DI_BULLISH_CROSS",
			Description: fmt.Sprintf("+DI crossed above -DI at %.1f", v),
			Strength:    domain.Bullish,
			Category:    domain.CategoryADX,
			Value:       v,
		})
	}
	if down, v := crossedBelow(f, indicators.PlusDI, indicators.MinusDI); down {
		out = append(out, domain.Signal{
			Name:        "DI_BEARISH_CROSS",
			Description: fmt.Sprintf("+DI crossed below -DI at %.1f", v),
			Strength:    domain.Bearish,
			Category:    domain.CategoryADX,
			Value:       v,
		})
	}

	// Rising ADX through the trending threshold means the move is
	// gathering strength, whichever side leads.
	adxPrev, ok1 := f.Prev(indicators.ADX)
	adxLast, ok2 := f.Last(indicators.ADX)
	if ok1 && ok2 && adxPrev <= ctx.ADXTrending() && adxLast > ctx.ADXTrending() {
		out = append(out, domain.Signal{
			Name:        "ADX_TREND_IGNITION",
			Description: fmt.Sprintf("ADX rose through %.0f to %.1f", ctx.ADXTrending(), adxLast),
			Strength:    domain.Significant,
			Category:    domain.CategoryADX,
			Value:       adxLast,
		})
	}
	return out
}
