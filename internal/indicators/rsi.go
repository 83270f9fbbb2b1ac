package indicators

import "math"

// rsiEpsilon keeps the RS division finite when the rolling average loss
// is exactly zero, e.g. a strictly rising series. Without it RSI degrades
// to NaN instead of approaching 100.
const rsiEpsilon = 1e-10

// rsiWilder computes RSI with Wilder smoothing. Positions < period are
// NaN. Output is always within [0, 100] once defined.
func rsiWilder(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = 100 - 100/(1+avgGain/(avgLoss+rsiEpsilon))

	for i := period + 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = 100 - 100/(1+avgGain/(avgLoss+rsiEpsilon))
	}
	return out
}
