package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// rsiDetector grades the latest RSI reading against profile thresholds.
// Oversold reads bullish (mean-reversion entry), overbought bearish.
type rsiDetector struct{}

func (rsiDetector) Category() domain.Category { return domain.CategoryRSI }

func (rsiDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	rsi, ok := f.Last(indicators.RSI)
	if !ok {
		return nil
	}

	var out []domain.Signal
	switch {
	case rsi < ctx.RSIExtremeOversold():
		out = append(out, domain.Signal{
			Name:        "RSI_EXTREME_OVERSOLD",
			Description: fmt.Sprintf("RSI %.1f below extreme oversold threshold %.1f", rsi, ctx.RSIExtremeOversold()),
			Strength:    domain.StrongBullish,
			Category:    domain.CategoryRSI,
			Value:       rsi,
		})
	case rsi < ctx.RSIOversold():
		out = append(out, domain.Signal{
			Name:        "RSI_OVERSOLD",
			Description: fmt.Sprintf("RSI %.1f below oversold threshold %.1f", rsi, ctx.RSIOversold()),
			Strength:    domain.Bullish,
			Category:    domain.CategoryRSI,
			Value:       rsi,
		})
	case rsi > ctx.RSIExtremeOverbought():
		out = append(out, domain.Signal{
			Name:        "RSI_EXTREME_OVERBOUGHT",
			Description: fmt.Sprintf("RSI %.1f above extreme overbought threshold %.1f", rsi, ctx.RSIExtremeOverbought()),
			Strength:    domain.StrongBearish,
			Category:    domain.CategoryRSI,
			Value:       rsi,
		})
	case rsi > ctx.RSIOverbought():
		out = append(out, domain.Signal{
			Name:        "RSI_OVERBOUGHT",
			Description: fmt.Sprintf("RSI %.1f above overbought threshold %.1f", rsi, ctx.RSIOverbought()),
			Strength:    domain.Bearish,
			Category:    domain.CategoryRSI,
			Value:       rsi,
		})
	}

	// 50-line cross marks a momentum-side change.
	if prev, ok := f.Prev(indicators.RSI); ok {
		if prev <= 50 && rsi > 50 {
			out = append(out, domain.Signal{
				Name:        "RSI_CROSS_50_UP",
				Description: fmt.Sprintf("RSI crossed above 50 to %.1f", rsi),
				Strength:    domain.Notable,
				Category:    domain.CategoryRSI,
				Value:       rsi,
			})
		}
		if prev >= 50 && rsi < 50 {
			out = append(out, domain.Signal{
				Name:        "RSI_CROSS_50_DOWN",
				Description: fmt.Sprintf("RSI crossed below 50 to %.1f", rsi),
				Strength:    domain.Notable,
				Category:    domain.CategoryRSI,
				Value:       rsi,
			})
		}
		// Exit from an extreme zone is an early reversal tell.
		if prev < ctx.RSIExtremeOversold() && rsi >= ctx.RSIExtremeOversold() {
			out = append(out, domain.Signal{
				Name:        "RSI_EXIT_EXTREME_OVERSOLD",
				Description: fmt.Sprintf("RSI recovered from extreme oversold to %.1f", rsi),
				Strength:    domain.Bullish,
				Category:    domain.CategoryRSI,
				Value:       rsi,
			})
		}
		if prev > ctx.RSIExtremeOverbought() && rsi <= ctx.RSIExtremeOverbought() {
			out = append(out, domain.Signal{
				Name:        "RSI_EXIT_EXTREME_OVERBOUGHT",
				Description: fmt.Sprintf("RSI fell back from extreme overbought to %.1f", rsi),
				Strength:    domain.Bearish,
				Category:    domain.CategoryRSI,
				Value:       rsi,
			})
		}
	}
	return out
}
