package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// maCrossDetector finds moving-average cross events on the latest bar.
type maCrossDetector struct{}

func (maCrossDetector) Category() domain.Category { return domain.CategoryMACross }

func (maCrossDetector) Detect(f *indicators.Frame, _ *config.Context) []domain.Signal {
	var out []domain.Signal

	if up, v := crossedAbove(f, indicators.SMA50, indicators.SMA200); up {
		out = append(out, domain.Signal{
			Name:        "GOLDEN_CROSS",
			Description: fmt.Sprintf("50-day SMA crossed above 200-day SMA at %.2f", v),
			Strength:    domain.StrongBullish,
			Category:    domain.CategoryMACross,
			Value:       v,
		})
	}
	if down, v := crossedBelow(f, indicators.SMA50, indicators.SMA200); down {
		out = append(out, domain.Signal{
			Name:        "DEATH_CROSS",
			Description: fmt.Sprintf("50-day SMA crossed below 200-day SMA at %.2f", v),
			Strength:    domain.StrongBearish,
			Category:    domain.CategoryMACross,
			Value:       v,
		})
	}

	// Price crossing the 20-day SMA.
	closes := f.Series().Closes()
	if n := len(closes); n >= 2 {
		smaPrev, ok1 := f.Prev(indicators.SMA20)
		smaLast, ok2 := f.Last(indicators.SMA20)
		if ok1 && ok2 {
			prev, last := closes[n-2], closes[n-1]
			if prev <= smaPrev && last > smaLast {
				out = append(out, domain.Signal{
					Name:        "PRICE_CROSS_SMA20_UP",
					Description: fmt.Sprintf("price %.2f crossed above the 20-day SMA %.2f", last, smaLast),
					Strength:    domain.Bullish,
					Category:    domain.CategoryMACross,
					Value:       last,
				})
			}
			if prev >= smaPrev && last < smaLast {
				out = append(out, domain.Signal{
					Name:        "PRICE_CROSS_SMA20_DOWN",
					Description: fmt.Sprintf("price %.2f crossed below the 20-day SMA %.2f", last, smaLast),
					Strength:    domain.Bearish,
					Category:    domain.CategoryMACross,
					Value:       last,
				})
			}
		}
	}
	return out
}

// maTrendDetector reads standing multi-MA alignment rather than events.
type maTrendDetector struct{}

func (maTrendDetector) Category() domain.Category { return domain.CategoryMATrend }

func (maTrendDetector) Detect(f *indicators.Frame, _ *config.Context) []domain.Signal {
	ma10, ok1 := f.Last(indicators.SMA10)
	ma20, ok2 := f.Last(indicators.SMA20)
	ma50, ok3 := f.Last(indicators.SMA50)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	var out []domain.Signal
	switch {
	case ma10 > ma20 && ma20 > ma50:
		out = append(out, domain.Signal{
			Name:        "MA_ALIGNMENT_BULLISH",
			Description: fmt.Sprintf("bullish stack: SMA10 %.2f > SMA20 %.2f > SMA50 %.2f", ma10, ma20, ma50),
			Strength:    domain.Bullish,
			Category:    domain.CategoryMATrend,
			Value:       ma10,
		})
	case ma10 < ma20 && ma20 < ma50:
		out = append(out, domain.Signal{
			Name:        "MA_ALIGNMENT_BEARISH",
			Description: fmt.Sprintf("bearish stack: SMA10 %.2f < SMA20 %.2f < SMA50 %.2f", ma10, ma20, ma50),
			Strength:    domain.Bearish,
			Category:    domain.CategoryMATrend,
			Value:       ma10,
		})
	}

	// Long-term posture versus the 200-day, when available.
	if ma200, ok := f.Last(indicators.SMA200); ok {
		price := f.LastClose()
		if price > ma200 && ma50 > ma200 {
			out = append(out, domain.Signal{
				Name:        "ABOVE_LONG_TERM_TREND",
				Description: fmt.Sprintf("price %.2f and SMA50 both above 200-day SMA %.2f", price, ma200),
				Strength:    domain.Notable,
				Category:    domain.CategoryMATrend,
				Value:       price,
			})
		}
	}
	return out
}
