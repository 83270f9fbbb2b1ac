package signals

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// volumeDetector compares the latest volume to its 20-day average.
// Volume extremes carry SIGNIFICANT strength: direction comes from the
// bar, participation from the ratio.
type volumeDetector struct{}

func (volumeDetector) Category() domain.Category { return domain.CategoryVolume }

func (volumeDetector) Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	avg, ok := f.Last(indicators.VolumeSMA20)
	if !ok || avg <= 0 {
		return nil
	}
	bars := f.Series().Bars
	last := bars[len(bars)-1]
	ratio := last.Volume / avg
	barUp := last.Close >= last.Open

	var out []domain.Signal
	switch {
	case ratio >= ctx.VolumeExtremeRatio():
		strength := domain.StrongBearish
		if barUp {
			strength = domain.StrongBullish
		}
		out = append(out, domain.Signal{
			Name:        "VOLUME_EXTREME",
			Description: fmt.Sprintf("volume %.1fx the 20-day average", ratio),
			Strength:    strength,
			Category:    domain.CategoryVolume,
			Value:       ratio,
		})
	case ratio >= ctx.VolumeSpikeRatio():
		strength := domain.Bearish
		if barUp {
			strength = domain.Bullish
		}
		out = append(out, domain.Signal{
			Name:        "VOLUME_SPIKE",
			Description: fmt.Sprintf("volume %.1fx the 20-day average", ratio),
			Strength:    strength,
			Category:    domain.CategoryVolume,
			Value:       ratio,
		})
	case ratio <= ctx.VolumeDryUpRatio():
		out = append(out, domain.Signal{
			Name:        "VOLUME_DRY_UP",
			Description: fmt.Sprintf("volume %.1fx the 20-day average, participation drying up", ratio),
			Strength:    domain.Neutral,
			Category:    domain.CategoryVolume,
			Value:       ratio,
		})
	}

	// OBV confirming a price advance adds conviction.
	if obvLast, ok1 := f.Last(indicators.OBV); ok1 {
		if obvPrev, ok2 := f.Value(indicators.OBV, f.Len()-6); ok2 && f.Len() >= 6 {
			chg, okc := f.Last(indicators.Change5D)
			if okc && obvLast > obvPrev && chg > 0 {
				out = append(out, domain.Signal{
					Name:        "OBV_CONFIRMING",
					Description: "on-balance volume rising with price over the last 5 bars",
					Strength:    domain.Notable,
					Category:    domain.CategoryVolume,
					Value:       obvLast,
				})
			}
		}
	}
	return out
}
