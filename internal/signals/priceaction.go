package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// priceActionDetector reads single-bar moves and opening gaps.
type priceActionDetector struct{}

func (priceActionDetector) Category() domain.Category { return domain.CategoryPriceAction }

func (priceActionDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	bars := f.Series().Bars
	if len(bars) < 2 {
		return nil
	}
	last := bars[len(bars)-1]
	prior := bars[len(bars)-2]

	var out []domain.Signal
	if chg, ok := f.Last(indicators.Change1D); ok {
		if chg >= ctx.LargeMovePct() {
			out = append(out, domain.Signal{
				Name:        "LARGE_GAIN",
				Description: fmt.Sprintf("single-bar gain of %.1f%%", chg),
				Strength:    domain.StrongBullish,
				Category:    domain.CategoryPriceAction,
				Value:       chg,
			})
		}
		if chg <= -ctx.LargeMovePct() {
			out = append(out, domain.Signal{
				Name:        "LARGE_LOSS",
				Description: fmt.Sprintf("single-bar loss of %.1f%%", chg),
				Strength:    domain.StrongBearish,
				Category:    domain.CategoryPriceAction,
				Value:       chg,
			})
		}
	}

	// Gap: today's open versus the prior close.
	if prior.Close > 0 {
		gap := (last.Open - prior.Close) / prior.Close * 100
		if gap >= ctx.GapPct() {
			out = append(out, domain.Signal{
				Name:        "GAP_UP",
				Description: fmt.Sprintf("opened %.1f%% above the prior close", gap),
				Strength:    domain.Bullish,
				Category:    domain.CategoryPriceAction,
				Value:       gap,
			})
		}
		if gap <= -ctx.GapPct() {
			out = append(out, domain.Signal{
				Name:        "GAP_DOWN",
				Description: fmt.Sprintf("opened %.1f%% below the prior close", -gap),
				Strength:    domain.Bearish,
				Category:    domain.CategoryPriceAction,
				Value:       gap,
			})
		}
	}
	return out
}
