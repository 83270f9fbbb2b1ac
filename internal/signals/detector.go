// Package signals turns an indicator frame into named, graded signals.
// Detection is idempotent over a fixed frame: every detector is a pure
// function of the frame and the threshold context, and DetectAll returns
// categories in a fixed order so repeated runs compare equal.
package signals

import (
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// Detector inspects one indicator family and emits zero or more signals.
// Implementations read only the columns they need; thresholds always come
// from the config context, never from constants in the detector.
type Detector interface {
	Category() domain.Category
	Detect(f *indicators.Frame, ctx *config.Context) []domain.Signal
}

// defaultDetectors lists every detector in canonical category order.
func defaultDetectors() []Detector {
	return []Detector{
		maCrossDetector{},
		maTrendDetector{},
		rsiDetector{},
		macdDetector{},
		bollingerDetector{},
		stochasticDetector{},
		volumeDetector{},
		trendDetector{},
		adxDetector{},
		priceActionDetector{},
	}
}

// DetectAll runs every detector against the frame and concatenates the
// results in deterministic order: category order first, chronological
// within a category.
func DetectAll(f *indicators.Frame, ctx *config.Context) []domain.Signal {
	var out []domain.Signal
	for _, d := range defaultDetectors() {
		out = append(out, d.Detect(f, ctx)...)
	}
	return out
}

// crossedAbove reports whether column a moved from at-or-below to above
// column b on the most recent bar.
func crossedAbove(f *indicators.Frame, a, b string) (bool, float64) {
	aPrev, ok1 := f.Prev(a)
	bPrev, ok2 := f.Prev(b)
	aLast, ok3 := f.Last(a)
	bLast, ok4 := f.Last(b)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false, 0
	}
	return aPrev <= bPrev && aLast > bLast, aLast
}

// crossedBelow mirrors crossedAbove.
func crossedBelow(f *indicators.Frame, a, b string) (bool, float64) {
	aPrev, ok1 := f.Prev(a)
	bPrev, ok2 := f.Prev(b)
	aLast, ok3 := f.Last(a)
	bLast, ok4 := f.Last(b)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false, 0
	}
	return aPrev >= bPrev && aLast < bLast, aLast
}
