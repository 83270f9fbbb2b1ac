package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/metrics"
)

// YahooProvider fetches OHLCV history from Yahoo Finance via go-yfinance.
type YahooProvider struct {
	log zerolog.Logger
}

// NewYahooProvider creates the vendor client.
func NewYahooProvider(log zerolog.Logger) *YahooProvider {
	return &YahooProvider{log: log.With().Str("provider", "yahoo").Logger()}
}

// Fetch downloads the bar history for (symbol, period). Vendor errors are
// mapped to the categorical taxonomy: unknown instruments become
// INVALID_SYMBOL, transport problems DATA_FETCH_ERROR, and an empty
// result INSUFFICIENT_DATA.
func (p *YahooProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch, "fetch cancelled", err)
	}

	params, ok := periodVendorParams[period]
	if !ok {
		return domain.BarSeries{}, domain.NewError(domain.ErrInvalidPeriod,
			fmt.Sprintf("period %q has no vendor mapping", period))
	}

	t, err := ticker.New(symbol)
	if err != nil {
		metrics.FetchTotal.WithLabelValues("transport_error").Inc()
		return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch,
			fmt.Sprintf("create ticker for %s", symbol), err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     params.Range,
		Interval:   params.Interval,
		AutoAdjust: true,
	})
	if err != nil {
		if isUnknownSymbolErr(err) {
			metrics.FetchTotal.WithLabelValues("invalid_symbol").Inc()
			return domain.BarSeries{}, domain.WrapError(domain.ErrInvalidSymbol,
				fmt.Sprintf("no such instrument %s", symbol), err)
		}
		metrics.FetchTotal.WithLabelValues("transport_error").Inc()
		return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch,
			fmt.Sprintf("history for %s", symbol), err)
	}
	if len(bars) == 0 {
		metrics.FetchTotal.WithLabelValues("invalid_symbol").Inc()
		return domain.BarSeries{}, domain.NewError(domain.ErrInvalidSymbol,
			fmt.Sprintf("no data returned for %s, symbol likely unknown", symbol))
	}

	series := domain.BarSeries{
		Symbol: strings.ToUpper(symbol),
		Period: period,
		Bars:   make([]domain.Bar, 0, len(bars)),
	}
	for _, b := range bars {
		series.Bars = append(series.Bars, domain.Bar{
			Timestamp: b.Date,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
	}
	if len(series.Bars) < 2 {
		metrics.FetchTotal.WithLabelValues("insufficient_data").Inc()
		return domain.BarSeries{}, domain.NewError(domain.ErrInsufficientData,
			fmt.Sprintf("%s returned %d bars for period %s", symbol, len(series.Bars), period))
	}

	metrics.FetchTotal.WithLabelValues("success").Inc()
	p.log.Debug().Str("symbol", series.Symbol).Str("period", string(period)).
		Int("bars", series.Len()).Msg("fetched bar series")
	return series, nil
}

// isUnknownSymbolErr sniffs vendor error text for not-found conditions.
// Yahoo reports unknown tickers as 404s with a "No data found" message.
func isUnknownSymbolErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "no data found") ||
		strings.Contains(msg, "delisted") ||
		strings.Contains(msg, "404")
}
