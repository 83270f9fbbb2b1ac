package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period identifies the history window / bar interval requested from the
// data provider. Intraday periods (15m, 1h, 4h) carry intraday bars; the
// rest carry daily bars over the named range.
type Period string

const (
	Period15m Period = "15m"
	Period1h  Period = "1h"
	Period4h  Period = "4h"
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	Period10y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// ValidPeriods lists every accepted period tag, in display order.
var ValidPeriods = []Period{
	Period15m, Period1h, Period4h, Period1d, Period5d, Period1mo,
	Period3mo, Period6mo, Period1y, Period2y, Period5y, Period10y,
	PeriodYTD, PeriodMax,
}

// ParsePeriod validates a period string. An empty string resolves to the
// default (1y). Invalid values are rejected with INVALID_PERIOD listing
// the accepted tags; no silent coercion.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Period1y, nil
	}
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ValidPeriods {
		if p == v {
			return p, nil
		}
	}
	accepted := make([]string, len(ValidPeriods))
	for i, v := range ValidPeriods {
		accepted[i] = string(v)
	}
	return "", NewError(ErrInvalidPeriod,
		fmt.Sprintf("invalid period %q, accepted values: %s", s, strings.Join(accepted, ", ")))
}

// IsIntraday reports whether the period carries sub-daily bars.
func (p Period) IsIntraday() bool {
	return p == Period15m || p == Period1h || p == Period4h
}

// Bar is a single OHLCV observation.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// BarSeries is an ordered OHLCV history for one symbol. Timestamps are
// strictly increasing; gaps are permitted.
type BarSeries struct {
	Symbol string `json:"symbol"`
	Period Period `json:"period"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }

// LastClose returns the most recent closing price, or 0 for an empty series.
func (s BarSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Closes extracts the close column.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column.
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Validate checks the series ordering invariant.
func (s BarSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return NewError(ErrCalculation,
				fmt.Sprintf("bar series %s not strictly increasing at index %d", s.Symbol, i))
		}
	}
	return nil
}
