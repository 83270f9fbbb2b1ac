// Package brief composes the morning brief: an index snapshot for the
// requested region plus per-symbol readings and trade ideas for a
// watchlist, all delegated to the per-symbol core.
package brief

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
	"github.com/marketlens/marketlens/internal/metrics"
)

// Index proxies per market region.
var regionIndices = map[string][]string{
	"us":     {"SPY", "QQQ", "DIA", "IWM"},
	"europe": {"VGK", "EZU", "FEZ"},
	"asia":   {"EWJ", "MCHI", "AAXJ"},
	"crypto": {"BTC-USD", "ETH-USD"},
}

// DefaultWatchlist applies when the caller names no symbols.
var DefaultWatchlist = []string{"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA"}

// IndexReading is one market proxy's snapshot.
type IndexReading struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	RSI       float64 `json:"rsi,omitempty"`
	Trend     string  `json:"trend"` // up, down, flat vs SMA50
}

// WatchReading is one watchlist symbol's condensed analysis.
type WatchReading struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	TopSignal string  `json:"top_signal,omitempty"`
	TopScore  float64 `json:"top_score"`
	Bullish   int     `json:"bullish_signals"`
	Bearish   int     `json:"bearish_signals"`
}

// Idea is an actionable plan surfaced from the watchlist.
type Idea struct {
	Symbol string           `json:"symbol"`
	Plan   domain.TradePlan `json:"plan"`
	Score  float64          `json:"score"`
}

// Brief is the composed morning summary.
type Brief struct {
	Region    string               `json:"region"`
	Indices   []IndexReading       `json:"indices"`
	Watchlist []WatchReading       `json:"watchlist"`
	Ideas     []Idea               `json:"ideas,omitempty"`
	Errors    []domain.SymbolError `json:"errors,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Composer builds briefs over the shared analyzer.
type Composer struct {
	analyzer *analyze.Analyzer
	workers  int
}

// NewComposer wires a composer; workers <= 0 uses 10.
func NewComposer(analyzer *analyze.Analyzer, workers int) *Composer {
	if workers <= 0 {
		workers = 10
	}
	return &Composer{analyzer: analyzer, workers: workers}
}

// Compose assembles the brief. An unknown region falls back to us; an
// empty watchlist uses the default. Per-symbol failures are recorded
// and never abort the brief.
func (c *Composer) Compose(ctx context.Context, watchlist []string, region string, period domain.Period, profile string) (Brief, error) {
	period, err := domain.ParsePeriod(string(period))
	if err != nil {
		return Brief{}, err
	}
	region = strings.ToLower(strings.TrimSpace(region))
	indices, ok := regionIndices[region]
	if !ok {
		region = "us"
		indices = regionIndices[region]
	}
	if len(watchlist) == 0 {
		watchlist = DefaultWatchlist
	}

	brief := Brief{Region: region, Timestamp: time.Now().UTC()}

	type outcome struct {
		symbol     string
		isIndex    bool
		analysis   domain.Analysis
		assessment domain.RiskAssessment
		err        error
	}
	type job struct {
		symbol  string
		isIndex bool
	}

	jobs := make(chan job)
	results := make(chan outcome, len(indices)+len(watchlist))
	workers := c.workers
	if total := len(indices) + len(watchlist); workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				req := analyze.Request{Symbol: j.symbol, Period: period, Profile: profile}
				if j.isIndex {
					analysis, err := c.analyzer.Analyze(ctx, req)
					results <- outcome{symbol: j.symbol, isIndex: true, analysis: analysis, err: err}
					continue
				}
				analysis, assessment, err := c.analyzer.AnalyzeAndPlan(ctx, req)
				results <- outcome{symbol: j.symbol, analysis: analysis, assessment: assessment, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, symbol := range indices {
			select {
			case jobs <- job{symbol: symbol, isIndex: true}:
			case <-ctx.Done():
				return
			}
		}
		for _, symbol := range watchlist {
			select {
			case jobs <- job{symbol: symbol}:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()
	close(results)

	for out := range results {
		if out.err != nil {
			code := domain.CodeOf(out.err)
			metrics.ScanSymbolErrors.WithLabelValues(string(code)).Inc()
			brief.Errors = append(brief.Errors, domain.SymbolError{
				Symbol: out.symbol, Code: code, Message: out.err.Error(),
			})
			continue
		}
		if out.isIndex {
			brief.Indices = append(brief.Indices, indexReading(out.analysis))
			continue
		}
		brief.Watchlist = append(brief.Watchlist, watchReading(out.analysis))
		if out.assessment.Actionable() {
			brief.Ideas = append(brief.Ideas, Idea{
				Symbol: out.symbol,
				Plan:   out.assessment.Plans[0],
				Score:  out.analysis.TopScore(),
			})
		}
	}

	sort.Slice(brief.Indices, func(i, j int) bool { return brief.Indices[i].Symbol < brief.Indices[j].Symbol })
	sort.Slice(brief.Watchlist, func(i, j int) bool { return brief.Watchlist[i].TopScore > brief.Watchlist[j].TopScore })
	sort.Slice(brief.Ideas, func(i, j int) bool { return brief.Ideas[i].Score > brief.Ideas[j].Score })

	log.Info().Str("region", region).Int("watchlist", len(brief.Watchlist)).
		Int("ideas", len(brief.Ideas)).Int("errors", len(brief.Errors)).Msg("morning brief composed")
	return brief, nil
}

func indexReading(a domain.Analysis) IndexReading {
	reading := IndexReading{
		Symbol:    a.Symbol,
		Price:     a.Price,
		ChangePct: a.ChangePct,
		Trend:     "flat",
	}
	if rsi, ok := a.Indicators[indicators.RSI]; ok {
		reading.RSI = rsi
	}
	if sma, ok := a.Indicators[indicators.SMA50]; ok {
		switch {
		case a.Price > sma*1.001:
			reading.Trend = "up"
		case a.Price < sma*0.999:
			reading.Trend = "down"
		}
	}
	return reading
}

func watchReading(a domain.Analysis) WatchReading {
	reading := WatchReading{
		Symbol:    a.Symbol,
		Price:     a.Price,
		ChangePct: a.ChangePct,
		TopScore:  a.TopScore(),
		Bullish:   a.BullishCount(),
		Bearish:   a.BearishCount(),
	}
	if len(a.Signals) > 0 {
		reading.TopSignal = a.Signals[0].Name
	}
	return reading
}
