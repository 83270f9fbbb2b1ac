package indicators

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

// maPeriods are the moving-average lookbacks the frame always carries.
var maPeriods = []int{5, 10, 20, 50, 100, 200}

const (
	volSMAShort = 20
	volSMALong  = 50

	// realizedVolWindow is the trailing window for annualized realized
	// volatility of log returns.
	realizedVolWindow = 20
	tradingDaysPerYr  = 252
)

// Calculate builds an IndicatorFrame from a bar series. Side-effect-free
// and deterministic: the same series and config always produce the same
// frame. Indicators whose lookback exceeds the series length are simply
// absent from the frame; only a series too short to compute anything at
// all is an error.
func Calculate(series domain.BarSeries, cfg config.IndicatorConfig) (*Frame, error) {
	n := series.Len()
	if n < 2 {
		return nil, domain.NewError(domain.ErrInsufficientData,
			fmt.Sprintf("series %s has %d bars, need at least 2", series.Symbol, n))
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	f := &Frame{series: series, columns: make(map[string][]float64)}

	add := func(name string, col []float64, warmup int) {
		if col == nil || n <= warmup {
			return
		}
		// talib zero-fills the unstable region; mark it explicitly
		// undefined instead.
		for i := 0; i < warmup && i < len(col); i++ {
			col[i] = math.NaN()
		}
		f.columns[name] = col
	}

	// Moving averages.
	smaNames := map[int]string{5: SMA5, 10: SMA10, 20: SMA20, 50: SMA50, 100: SMA100, 200: SMA200}
	emaNames := map[int]string{5: EMA5, 10: EMA10, 20: EMA20, 50: EMA50, 100: EMA100, 200: EMA200}
	for _, p := range maPeriods {
		if n >= p {
			add(smaNames[p], talib.Sma(closes, p), p-1)
			add(emaNames[p], talib.Ema(closes, p), p-1)
		}
	}

	// RSI with the zero-loss epsilon guard (see rsi.go).
	if n > cfg.RSIPeriod {
		add(RSI, rsiWilder(closes, cfg.RSIPeriod), cfg.RSIPeriod)
	}

	// MACD line / signal / histogram.
	if macdWarm := cfg.MACDSlow + cfg.MACDSignal - 2; n > macdWarm {
		line, signal, hist := talib.Macd(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
		add(MACD, line, cfg.MACDSlow-1)
		add(MACDSignal, signal, macdWarm)
		add(MACDHist, hist, macdWarm)
	}

	// Bollinger bands plus width.
	if p := cfg.BollingerPeriod; n >= p {
		upper, middle, lower := talib.BBands(closes, p, cfg.BollingerStdDev, cfg.BollingerStdDev, talib.SMA)
		width := make([]float64, n)
		for i := range width {
			if middle[i] != 0 {
				width[i] = (upper[i] - lower[i]) / middle[i] * 100
			}
		}
		add(BBUpper, upper, p-1)
		add(BBMiddle, middle, p-1)
		add(BBLower, lower, p-1)
		add(BBWidth, width, p-1)
	}

	// Stochastic slow %K / %D.
	kWarm := cfg.StochasticK + cfg.StochasticD - 2
	dWarm := kWarm + cfg.StochasticD - 1
	if n > dWarm {
		k, d := talib.Stoch(highs, lows, closes,
			cfg.StochasticK, cfg.StochasticD, talib.SMA, cfg.StochasticD, talib.SMA)
		add(StochK, k, kWarm)
		add(StochD, d, dWarm)
	}

	// ADX and directional lines.
	if p := cfg.ADXPeriod; n > 2*p {
		add(ADX, talib.Adx(highs, lows, closes, p), 2*p-1)
		add(PlusDI, talib.PlusDI(highs, lows, closes, p), p)
		add(MinusDI, talib.MinusDI(highs, lows, closes, p), p)
	}

	// ATR.
	if p := cfg.ATRPeriod; n > p {
		add(ATR, talib.Atr(highs, lows, closes, p), p)
	}

	// Volume.
	if n >= volSMAShort {
		add(VolumeSMA20, talib.Sma(volumes, volSMAShort), volSMAShort-1)
	}
	if n >= volSMALong {
		add(VolumeSMA50, talib.Sma(volumes, volSMALong), volSMALong-1)
	}
	add(OBV, talib.Obv(closes, volumes), 0)

	// Percent changes.
	add(Change1D, pctChange(closes, 1), 1)
	if n > 5 {
		add(Change5D, pctChange(closes, 5), 5)
	}

	// Annualized realized volatility of log returns.
	if n > realizedVolWindow {
		add(RealizedVol, rollingRealizedVol(closes, realizedVolWindow), realizedVolWindow)
	}

	if len(f.columns) == 0 {
		return nil, domain.NewError(domain.ErrInsufficientData,
			fmt.Sprintf("series %s has %d bars, no indicator computable", series.Symbol, n))
	}
	return f, nil
}

// pctChange computes the percent change over lag bars.
func pctChange(closes []float64, lag int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i < lag || closes[i-lag] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (closes[i] - closes[i-lag]) / closes[i-lag] * 100
	}
	return out
}

// rollingRealizedVol computes the trailing stddev of log returns,
// annualized, as a percentage.
func rollingRealizedVol(closes []float64, window int) []float64 {
	n := len(closes)
	returns := make([]float64, n)
	for i := 1; i < n; i++ {
		if closes[i-1] > 0 && closes[i] > 0 {
			returns[i] = math.Log(closes[i] / closes[i-1])
		}
	}

	out := make([]float64, n)
	for i := range out {
		if i < window {
			out[i] = math.NaN()
			continue
		}
		sd := stat.StdDev(returns[i-window+1:i+1], nil)
		out[i] = sd * math.Sqrt(tradingDaysPerYr) * 100
	}
	return out
}
