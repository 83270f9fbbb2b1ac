package signals

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// squeezePercentile: a squeeze is the band width sitting in the lowest
// decile of its own history.
const squeezePercentile = 0.10

// bollingerDetector reads band touches and width squeezes.
type bollingerDetector struct{}

func (bollingerDetector) Category() domain.Category { return domain.CategoryBollinger }

func (bollingerDetector) Detect(f *indicators.Frame, _ *config.Context) []domain.Signal {
	lower, ok1 := f.Last(indicators.BBLower)
	upper, ok2 := f.Last(indicators.BBUpper)
	if !ok1 || !ok2 {
		return nil
	}
	price := f.LastClose()

	var out []domain.Signal
	if price <= lower {
		out = append(out, domain.Signal{
			Name:        "BB_LOWER_TOUCH",
			Description: fmt.Sprintf("price %.2f at or below lower band %.2f", price, lower),
			Strength:    domain.Bullish,
			Category:    domain.CategoryBollinger,
			Value:       price,
		})
	}
	if price >= upper {
		out = append(out, domain.Signal{
			Name:        "BB_UPPER_TOUCH",
			Description: fmt.Sprintf("price %.2f at or above upper band %.2f", price, upper),
			Strength:    domain.Bearish,
			Category:    domain.CategoryBollinger,
			Value:       price,
		})
	}

	// Squeeze: current width in the lowest percentile of its history.
	if widths, ok := f.Column(indicators.BBWidth); ok {
		defined := make([]float64, 0, len(widths))
		for i := range widths {
			if v, ok := f.Value(indicators.BBWidth, i); ok {
				defined = append(defined, v)
			}
		}
		if len(defined) >= 30 {
			current := defined[len(defined)-1]
			hist := append([]float64(nil), defined...)
			sort.Float64s(hist)
			cutoff := stat.Quantile(squeezePercentile, stat.Empirical, hist, nil)
			if current <= cutoff {
				out = append(out, domain.Signal{
					Name:        "BB_SQUEEZE",
					Description: fmt.Sprintf("band width %.2f%% in the lowest decile of its history", current),
					Strength:    domain.Notable,
					Category:    domain.CategoryBollinger,
					Value:       current,
				})
			}
		}
	}
	return out
}
