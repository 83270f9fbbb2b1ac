package scan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// CompareRow is one symbol's projection onto the comparison metric.
type CompareRow struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Bullish   int     `json:"bullish_signals"`
	Bearish   int     `json:"bearish_signals"`
}

// CompareResult ranks the rows by metric value. Winner is nil when no
// symbol produced a row.
type CompareResult struct {
	Metric string               `json:"metric"`
	Rows   []CompareRow         `json:"rows"`
	Winner *CompareRow          `json:"winner,omitempty"`
	Errors []domain.SymbolError `json:"errors,omitempty"`
}

// compareMetrics maps metric names to row projections. Higher is better
// except where inverted notes otherwise.
var compareMetrics = map[string]func(domain.Analysis) (float64, bool){
	"score": func(a domain.Analysis) (float64, bool) {
		return a.TopScore(), true
	},
	"change": func(a domain.Analysis) (float64, bool) {
		return a.ChangePct, true
	},
	"rsi": func(a domain.Analysis) (float64, bool) {
		v, ok := a.Indicators[indicators.RSI]
		return v, ok
	},
	"momentum": func(a domain.Analysis) (float64, bool) {
		v, ok := a.Indicators[indicators.Change5D]
		return v, ok
	},
	"volatility": func(a domain.Analysis) (float64, bool) {
		v, ok := a.Indicators[indicators.RealizedVol]
		return v, ok
	},
	"volume": func(a domain.Analysis) (float64, bool) {
		v, ok := a.Indicators[indicators.OBV]
		return v, ok
	},
}

// CompareMetricNames lists the accepted metrics, sorted.
func CompareMetricNames() []string {
	names := make([]string, 0, len(compareMetrics))
	for n := range compareMetrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compare runs the core for each symbol, projects the metric, and
// returns rows ranked best-first. The default metric is score.
func (s *Scanner) Compare(ctx context.Context, symbols []string, metric string, opts Options) (CompareResult, error) {
	if metric == "" {
		metric = "score"
	}
	project, ok := compareMetrics[strings.ToLower(metric)]
	if !ok {
		return CompareResult{}, domain.NewError(domain.ErrInvalidOverride,
			fmt.Sprintf("unknown compare metric %q, accepted: %s", metric, strings.Join(CompareMetricNames(), ", ")))
	}
	var err error
	if opts.Period, err = domain.ParsePeriod(string(opts.Period)); err != nil {
		return CompareResult{}, err
	}

	result := CompareResult{Metric: strings.ToLower(metric)}
	outcomes := s.fanOut(ctx, symbols, opts, func(ctx context.Context, req analyze.Request) symbolOutcome {
		analysis, err := s.analyzer.Analyze(ctx, req)
		return symbolOutcome{symbol: req.Symbol, analysis: analysis, err: err}
	})

	for _, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, symbolError(out.symbol, out.err))
			continue
		}
		value, defined := project(out.analysis)
		if !defined {
			result.Errors = append(result.Errors, domain.SymbolError{
				Symbol:  out.symbol,
				Code:    domain.ErrInsufficientData,
				Message: fmt.Sprintf("metric %s undefined for %s", result.Metric, out.symbol),
			})
			continue
		}
		result.Rows = append(result.Rows, CompareRow{
			Symbol:    out.analysis.Symbol,
			Price:     out.analysis.Price,
			ChangePct: out.analysis.ChangePct,
			Metric:    result.Metric,
			Value:     value,
			Bullish:   out.analysis.BullishCount(),
			Bearish:   out.analysis.BearishCount(),
		})
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Value > result.Rows[j].Value
	})
	if len(result.Rows) > 0 {
		result.Winner = &result.Rows[0]
	}
	return result, nil
}
