// Package data fetches OHLCV bar series from the market-data vendor and
// memoizes them. The stack is layered: YahooProvider talks to the vendor,
// RetryProvider adds backoff, pacing and a circuit breaker, and
// CachedProvider adds the bounded single-flight cache. Callers hold only
// the Provider interface.
package data

import (
	"context"

	"github.com/marketlens/marketlens/internal/domain"
)

// Provider produces a bar series for (symbol, period).
type Provider interface {
	Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error)
}

// vendorParams maps a period tag to the vendor's (range, interval) pair.
// Intraday tags shorten the range so bar counts stay comparable to the
// daily periods.
type vendorParams struct {
	Range    string
	Interval string
}

var periodVendorParams = map[domain.Period]vendorParams{
	domain.Period15m: {Range: "5d", Interval: "15m"},
	domain.Period1h:  {Range: "1mo", Interval: "1h"},
	domain.Period4h:  {Range: "3mo", Interval: "1h"},
	domain.Period1d:  {Range: "1d", Interval: "1d"},
	domain.Period5d:  {Range: "5d", Interval: "1d"},
	domain.Period1mo: {Range: "1mo", Interval: "1d"},
	domain.Period3mo: {Range: "3mo", Interval: "1d"},
	domain.Period6mo: {Range: "6mo", Interval: "1d"},
	domain.Period1y:  {Range: "1y", Interval: "1d"},
	domain.Period2y:  {Range: "2y", Interval: "1d"},
	domain.Period5y:  {Range: "5y", Interval: "1d"},
	domain.Period10y: {Range: "10y", Interval: "1d"},
	domain.PeriodYTD: {Range: "ytd", Interval: "1d"},
	domain.PeriodMax: {Range: "max", Interval: "1d"},
}
