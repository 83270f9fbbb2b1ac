package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// macdDetector finds signal-line and zero-line cross events plus
// histogram slope flips.
type macdDetector struct{}

func (macdDetector) Category() domain.Category { return domain.CategoryMACD }

func (macdDetector) Detect(f *indicators.Frame, _ *config.Context) []domain.Signal {
	var out []domain.Signal

	if up, v := crossedAbove(f, indicators.MACD, indicators.MACDSignal); up {
		out = append(out, domain.Signal{
			Name:        "MACD_BULLISH_CROSS",
			Description: fmt.Sprintf("MACD line crossed above signal line at %.3f", v),
			Strength:    domain.Bullish,
			Category:    domain.CategoryMACD,
			Value:       v,
		})
	}
	if down, v := crossedBelow(f, indicators.MACD, indicators.MACDSignal); down {
		out = append(out, domain.Signal{
			Name:        "MACD_BEARISH_CROSS",
			Description: fmt.Sprintf("MACD line crossed below signal line at %.3f", v),
			Strength:    domain.Bearish,
			Category:    domain.CategoryMACD,
			Value:       v,
		})
	}

	macdPrev, ok1 := f.Prev(indicators.MACD)
	macdLast, ok2 := f.Last(indicators.MACD)
	if ok1 && ok2 {
		if macdPrev <= 0 && macdLast > 0 {
			out = append(out, domain.Signal{
				Name:        "MACD_ZERO_CROSS_UP",
				Description: fmt.Sprintf("MACD crossed above zero to %.3f", macdLast),
				Strength:    domain.StrongBullish,
				Category:    domain.CategoryMACD,
				Value:       macdLast,
			})
		}
		if macdPrev >= 0 && macdLast < 0 {
			out = append(out, domain.Signal{
				Name:        "MACD_ZERO_CROSS_DOWN",
				Description: fmt.Sprintf("MACD crossed below zero to %.3f", macdLast),
				Strength:    domain.StrongBearish,
				Category:    domain.CategoryMACD,
				Value:       macdLast,
			})
		}
	}

	// Histogram slope flip: momentum turning before the lines cross.
	n := f.Len()
	h0, ok1 := f.Value(indicators.MACDHist, n-3)
	h1, ok2 := f.Value(indicators.MACDHist, n-2)
	h2, ok3 := f.Value(indicators.MACDHist, n-1)
	if ok1 && ok2 && ok3 {
		if h1 < h0 && h2 > h1 && h2 < 0 {
			out = append(out, domain.Signal{
				Name:        "MACD_HIST_TURN_UP",
				Description: fmt.Sprintf("MACD histogram turned up at %.3f while negative", h2),
				Strength:    domain.Notable,
				Category:    domain.CategoryMACD,
				Value:       h2,
			})
		}
		if h1 > h0 && h2 < h1 && h2 > 0 {
			out = append(out, domain.Signal{
				Name:        "MACD_HIST_TURN_DOWN",
				Description: fmt.Sprintf("MACD histogram turned down at %.3f while positive", h2),
				Strength:    domain.Notable,
				Category:    domain.CategoryMACD,
				Value:       h2,
			})
		}
	}
	return out
}
