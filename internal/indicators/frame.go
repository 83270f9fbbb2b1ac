package indicators

import (
	"math"

	"github.com/marketlens/marketlens/internal/domain"
)

// Canonical column names. Every exported indicator has exactly one name;
// these constants are the only spellings that appear anywhere.
const (
	SMA5   = "SMA_5"
	SMA10  = "SMA_10"
	SMA20  = "SMA_20"
	SMA50  = "SMA_50"
	SMA100 = "SMA_100"
	SMA200 = "SMA_200"

	EMA5   = "EMA_5"
	EMA10  = "EMA_10"
	EMA20  = "EMA_20"
	EMA50  = "EMA_50"
	EMA100 = "EMA_100"
	EMA200 = "EMA_200"

	RSI = "RSI"

	MACD       = "MACD"
	MACDSignal = "MACD_Signal"
	MACDHist   = "MACD_Hist"

	BBUpper  = "BB_Upper"
	BBMiddle = "BB_Middle"
	BBLower  = "BB_Lower"
	BBWidth  = "BB_Width"

	StochK = "Stoch_K"
	StochD = "Stoch_D"

	ADX     = "ADX"
	PlusDI  = "Plus_DI"
	MinusDI = "Minus_DI"

	ATR = "ATR"

	VolumeSMA20 = "Volume_SMA_20"
	VolumeSMA50 = "Volume_SMA_50"
	OBV         = "OBV"

	Change1D    = "Change_1D"
	Change5D    = "Change_5D"
	RealizedVol = "Realized_Vol"
)

// Frame wraps a BarSeries with aligned derived columns. Every column has
// the same length as the input series; warmup positions where a column is
// not yet defined carry NaN. The frame is immutable once built.
type Frame struct {
	series  domain.BarSeries
	columns map[string][]float64
}

// Series returns the underlying bar series.
func (f *Frame) Series() domain.BarSeries { return f.series }

// Len returns the number of bars.
func (f *Frame) Len() int { return f.series.Len() }

// Symbol returns the series symbol.
func (f *Frame) Symbol() string { return f.series.Symbol }

// Has reports whether the named column was computable for this series.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns the full aligned column. Warmup positions are NaN.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.columns[name]
	return col, ok
}

// Value returns the column value at position i, reporting false when the
// column is absent or not yet defined at i.
func (f *Frame) Value(name string, i int) (float64, bool) {
	col, ok := f.columns[name]
	if !ok || i < 0 || i >= len(col) || math.IsNaN(col[i]) {
		return 0, false
	}
	return col[i], true
}

// Defined reports whether the column holds a value at position i.
func (f *Frame) Defined(name string, i int) bool {
	_, ok := f.Value(name, i)
	return ok
}

// Last returns the most recent value of the column.
func (f *Frame) Last(name string) (float64, bool) {
	return f.Value(name, f.Len()-1)
}

// Prev returns the value one bar before the end.
func (f *Frame) Prev(name string) (float64, bool) {
	return f.Value(name, f.Len()-2)
}

// LastClose returns the most recent close.
func (f *Frame) LastClose() float64 { return f.series.LastClose() }

// Snapshot collects the latest defined value of every column, keyed by
// canonical name. This is the indicator map embedded in persisted
// analysis documents.
func (f *Frame) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(f.columns))
	for name := range f.columns {
		if v, ok := f.Last(name); ok {
			out[name] = v
		}
	}
	return out
}
