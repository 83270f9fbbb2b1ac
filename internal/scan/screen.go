package scan

import (
	"context"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// Criteria are the boolean filters a screen applies to per-symbol
// output. Zero values disable a filter; RSI bounds use [Min, Max].
type Criteria struct {
	RSIMin     float64 `json:"rsi_min,omitempty"`
	RSIMax     float64 `json:"rsi_max,omitempty"`
	MinBullish int     `json:"min_bullish,omitempty"`
	MaxBearish int     `json:"max_bearish,omitempty"`
	MinScore   float64 `json:"min_score,omitempty"`
	AboveSMA50 bool    `json:"above_sma50,omitempty"`
	MinVolume  float64 `json:"min_volume_ratio,omitempty"` // 20-day vs 50-day volume average
}

// ScreenMatch is one symbol that passed every active criterion.
type ScreenMatch struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	RSI       float64 `json:"rsi,omitempty"`
	TopScore  float64 `json:"top_score"`
	Bullish   int     `json:"bullish_signals"`
	Bearish   int     `json:"bearish_signals"`
	TopSignal string  `json:"top_signal,omitempty"`
}

// ScreenResult pairs the matches with the count examined.
type ScreenResult struct {
	Matches      []ScreenMatch        `json:"matches"`
	TotalScanned int                  `json:"total_scanned"`
	Errors       []domain.SymbolError `json:"errors,omitempty"`
}

// Screen runs the core over a universe name or an explicit symbol list
// and keeps the symbols whose output satisfies every active criterion.
func (s *Scanner) Screen(ctx context.Context, universe string, symbols []string, criteria Criteria, opts Options) (ScreenResult, error) {
	if len(symbols) == 0 {
		resolved, err := ResolveUniverse(universe)
		if err != nil {
			return ScreenResult{}, err
		}
		symbols = resolved
	}
	var err error
	if opts.Period, err = domain.ParsePeriod(string(opts.Period)); err != nil {
		return ScreenResult{}, err
	}

	result := ScreenResult{TotalScanned: len(symbols)}
	outcomes := s.fanOut(ctx, symbols, opts, func(ctx context.Context, req analyze.Request) symbolOutcome {
		analysis, err := s.analyzer.Analyze(ctx, req)
		return symbolOutcome{symbol: req.Symbol, analysis: analysis, err: err}
	})

	for _, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, symbolError(out.symbol, out.err))
			continue
		}
		if match, ok := applyCriteria(out.analysis, criteria); ok {
			result.Matches = append(result.Matches, match)
		}
	}
	return result, nil
}

// applyCriteria evaluates one analysis against every active filter.
func applyCriteria(a domain.Analysis, c Criteria) (ScreenMatch, bool) {
	rsi, hasRSI := a.Indicators[indicators.RSI]
	if c.RSIMin > 0 && (!hasRSI || rsi < c.RSIMin) {
		return ScreenMatch{}, false
	}
	if c.RSIMax > 0 && (!hasRSI || rsi > c.RSIMax) {
		return ScreenMatch{}, false
	}
	if a.BullishCount() < c.MinBullish {
		return ScreenMatch{}, false
	}
	if c.MaxBearish > 0 && a.BearishCount() > c.MaxBearish {
		return ScreenMatch{}, false
	}
	if a.TopScore() < c.MinScore {
		return ScreenMatch{}, false
	}
	if c.AboveSMA50 {
		sma, ok := a.Indicators[indicators.SMA50]
		if !ok || a.Price <= sma {
			return ScreenMatch{}, false
		}
	}
	if c.MinVolume > 0 {
		avg, ok := a.Indicators[indicators.VolumeSMA20]
		if !ok || avg <= 0 {
			return ScreenMatch{}, false
		}
		long, okLong := a.Indicators[indicators.VolumeSMA50]
		if !okLong || avg/long < c.MinVolume {
			return ScreenMatch{}, false
		}
	}

	match := ScreenMatch{
		Symbol:    a.Symbol,
		Price:     a.Price,
		ChangePct: a.ChangePct,
		TopScore:  a.TopScore(),
		Bullish:   a.BullishCount(),
		Bearish:   a.BearishCount(),
	}
	if hasRSI {
		match.RSI = rsi
	}
	if len(a.Signals) > 0 {
		match.TopSignal = a.Signals[0].Name
	}
	return match, true
}
