package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// stochasticDetector reads %K zone and K/D crosses inside extreme zones.
type stochasticDetector struct{}

func (stochasticDetector) Category() domain.Category { return domain.CategoryStochastic }

func (stochasticDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	k, ok := f.Last(indicators.StochK)
	if !ok {
		return nil
	}

	var out []domain.Signal
	if k < ctx.StochasticOversold() {
		out = append(out, domain.Signal{
			Name:        "STOCH_OVERSOLD",
			Description: fmt.Sprintf("%%K %.1f below %.0f", k, ctx.StochasticOversold()),
			Strength:    domain.Bullish,
			Category:    domain.CategoryStochastic,
			Value:       k,
		})
	}
	if k > ctx.StochasticOverbought() {
		out = append(out, domain.Signal{
			Name:        "STOCH_OVERBOUGHT",
			Description: fmt.Sprintf("%%K %.1f above %.0f", k, ctx.StochasticOverbought()),
			Strength:    domain.Bearish,
			Category:    domain.CategoryStochastic,
			Value:       k,
		})
	}

	// K/D cross only counts inside an extreme zone; mid-range crosses
	// are noise.
	if up, v := crossedAbove(f, indicators.StochK, indicators.StochD); up && v < ctx.StochasticOversold()+10 {
		out = append(out, domain.Signal{
			Name:        "STOCH_BULLISH_CROSS",
			Description: fmt.Sprintf("%%K crossed above %%D at %.1f in the oversold zone", v),
			Strength:    domain.StrongBullish,
			Category:    domain.CategoryStochastic,
			Value:       v,
		})
	}
	if down, v := crossedBelow(f, indicators.StochK, indicators.StochD); down && v > ctx.StochasticOverbought()-10 {
		out = append(out, domain.Signal{
			Name:        "STOCH_BEARISH_CROSS",
			Description: fmt.Sprintf("%%K crossed below %%D at %.1f in the overbought zone", v),
			Strength:    domain.StrongBearish,
			Category:    domain.CategoryStochastic,
			Value:       v,
		})
	}
	return out
}
