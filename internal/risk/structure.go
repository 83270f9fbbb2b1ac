package risk

import "github.com/marketlens/marketlens/internal/domain"

// swingWindow is the neighborhood each side of a bar that must confirm a
// local extremum.
const swingWindow = 3

// SwingPoint is a confirmed local extremum.
type SwingPoint struct {
	Index int
	Price float64
}

// swingLows finds bars whose low is the minimum of the surrounding
// window, scanning only the trailing lookback region.
func swingLows(bars []domain.Bar, lookback int) []SwingPoint {
	return swingPoints(bars, lookback, func(center float64, neighbor domain.Bar) bool {
		return neighbor.Low < center
	}, func(b domain.Bar) float64 { return b.Low })
}

// swingHighs mirrors swingLows for local maxima.
func swingHighs(bars []domain.Bar, lookback int) []SwingPoint {
	return swingPoints(bars, lookback, func(center float64, neighbor domain.Bar) bool {
		return neighbor.High > center
	}, func(b domain.Bar) float64 { return b.High })
}

func swingPoints(bars []domain.Bar, lookback int, beats func(float64, domain.Bar) bool, value func(domain.Bar) float64) []SwingPoint {
	n := len(bars)
	start := n - lookback
	if start < swingWindow {
		start = swingWindow
	}

	var points []SwingPoint
	for i := start; i < n-swingWindow; i++ {
		center := value(bars[i])
		confirmed := true
		for j := i - swingWindow; j <= i+swingWindow; j++ {
			if j == i {
				continue
			}
			if beats(center, bars[j]) {
				confirmed = false
				break
			}
		}
		if confirmed {
			points = append(points, SwingPoint{Index: i, Price: center})
		}
	}
	return points
}

// NearestInvalidation locates the structural level where the thesis
// fails: for a bullish bias the most recent swing low below entry, for
// bearish the most recent swing high above. ok is false when no such
// structure exists within the lookback.
func NearestInvalidation(bars []domain.Bar, bias domain.Bias, entry float64, lookback int) (float64, bool) {
	if bias == domain.BiasBullish {
		lows := swingLows(bars, lookback)
		for i := len(lows) - 1; i >= 0; i-- {
			if lows[i].Price < entry {
				return lows[i].Price, true
			}
		}
		return 0, false
	}
	highs := swingHighs(bars, lookback)
	for i := len(highs) - 1; i >= 0; i-- {
		if highs[i].Price > entry {
			return highs[i].Price, true
		}
	}
	return 0, false
}

// StructuralTarget finds the next swing level on the reward side of
// entry: a prior swing high above for bullish, swing low below for
// bearish. ok is false when price is already beyond all recent structure.
func StructuralTarget(bars []domain.Bar, bias domain.Bias, entry float64, lookback int) (float64, bool) {
	if bias == domain.BiasBullish {
		highs := swingHighs(bars, lookback)
		best, found := 0.0, false
		for _, h := range highs {
			if h.Price > entry && (!found || h.Price < best) {
				best, found = h.Price, true
			}
		}
		return best, found
	}
	lows := swingLows(bars, lookback)
	best, found := 0.0, false
	for _, l := range lows {
		if l.Price < entry && (!found || l.Price > best) {
			best, found = l.Price, true
		}
	}
	return best, found
}
