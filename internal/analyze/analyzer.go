// Package analyze composes the per-symbol core pipeline:
//
//	data -> indicators -> signal detection -> ranking -> risk qualification
//
// The pipeline is strictly sequential for one symbol; the only blocking
// points are the data fetch and the optional remote ranker call. All
// fan-out lives above this package.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/cache"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/data"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
	"github.com/marketlens/marketlens/internal/metrics"
	"github.com/marketlens/marketlens/internal/persistence"
	"github.com/marketlens/marketlens/internal/rank"
	"github.com/marketlens/marketlens/internal/risk"
	"github.com/marketlens/marketlens/internal/signals"
)

// Request names everything a per-symbol analysis depends on. A fresh
// UserConfig is resolved per request; nothing global is consulted.
type Request struct {
	Symbol        string
	Period        domain.Period
	Profile       string
	Overrides     map[string]float64
	UseAI         bool
	TimeframeHint domain.Timeframe
}

// Analyzer owns the per-symbol core and its memoization. Construct once
// at process init and share across requests; the analyzer itself is
// stateless apart from the bounded cache.
type Analyzer struct {
	provider  data.Provider
	remoteCfg rank.RemoteConfig
	store     persistence.AnalysisStore // optional, nil-safe
	results   *cache.TTLCache
}

// Option configures optional analyzer collaborators.
type Option func(*Analyzer)

// WithStore attaches a document store; analyses and assessments are
// persisted best-effort after each run.
func WithStore(store persistence.AnalysisStore) Option {
	return func(a *Analyzer) { a.store = store }
}

// WithRemoteRanker enables the LLM ranking path.
func WithRemoteRanker(cfg rank.RemoteConfig) Option {
	return func(a *Analyzer) { a.remoteCfg = cfg }
}

// WithResultCache overrides the default analysis cache bounds.
func WithResultCache(maxEntries int, ttl time.Duration) Option {
	return func(a *Analyzer) { a.results = cache.New(maxEntries, ttl) }
}

// New creates an analyzer over the given provider stack.
func New(provider data.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider: provider,
		results:  cache.New(100, 5*time.Minute),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pipelineOutput carries everything the core produced for one symbol.
type pipelineOutput struct {
	frame   *indicators.Frame
	ranked  rank.Result
	cfgCtx  *config.Context
	created time.Time
}

// Analyze runs the full pipeline and returns the analysis record with
// ranked signals truncated to the profile's maximum.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (domain.Analysis, error) {
	out, err := a.run(ctx, req)
	if err != nil {
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
		return domain.Analysis{}, err
	}

	analysis := a.buildAnalysis(req, out)
	metrics.AnalysisTotal.WithLabelValues("success").Inc()

	if a.store != nil {
		if err := a.store.SaveAnalysis(ctx, analysis); err != nil {
			log.Warn().Err(err).Str("symbol", req.Symbol).Msg("analysis persistence failed")
		}
	}
	return analysis, nil
}

// Plan runs the pipeline and the risk qualifier, producing either trade
// plans or suppression reasons.
func (a *Analyzer) Plan(ctx context.Context, req Request) (domain.RiskAssessment, error) {
	out, err := a.run(ctx, req)
	if err != nil {
		return domain.RiskAssessment{}, err
	}
	qualifier := risk.NewQualifier(out.cfgCtx)
	return qualifier.Assess(out.frame, out.ranked.Signals, req.TimeframeHint), nil
}

// AnalyzeAndPlan runs the pipeline once and returns both views; the
// fan-out layer uses this to avoid double work.
func (a *Analyzer) AnalyzeAndPlan(ctx context.Context, req Request) (domain.Analysis, domain.RiskAssessment, error) {
	out, err := a.run(ctx, req)
	if err != nil {
		return domain.Analysis{}, domain.RiskAssessment{}, err
	}
	qualifier := risk.NewQualifier(out.cfgCtx)
	assessment := qualifier.Assess(out.frame, out.ranked.Signals, req.TimeframeHint)
	return a.buildAnalysis(req, out), assessment, nil
}

// run resolves config, fetches data, computes the frame, detects and
// ranks signals. Results are memoized by (symbol, period, profile,
// override fingerprint, ai).
func (a *Analyzer) run(ctx context.Context, req Request) (*pipelineOutput, error) {
	period, err := domain.ParsePeriod(string(req.Period))
	if err != nil {
		return nil, err
	}
	req.Period = period

	cfg, err := config.Resolve(req.Profile, req.Overrides)
	if err != nil {
		return nil, err
	}
	cfgCtx := config.NewContext(cfg)

	key := a.cacheKey(req)
	if cached, ok := a.results.Get(key); ok {
		metrics.AnalysisCacheHits.Inc()
		return cached.(*pipelineOutput), nil
	}

	series, err := a.provider.Fetch(ctx, req.Symbol, req.Period)
	if err != nil {
		return nil, err
	}

	frame, err := indicators.Calculate(series, cfg.Indicators)
	if err != nil {
		return nil, err
	}

	detected := signals.DetectAll(frame, cfgCtx)
	snapshot := rank.Snapshot{
		Symbol:     frame.Symbol(),
		Price:      frame.LastClose(),
		Indicators: frame.Snapshot(),
	}
	if chg, ok := frame.Last(indicators.Change1D); ok {
		snapshot.ChangePct = chg
	}

	ranked, err := a.ranker(cfgCtx, req.UseAI).Rank(ctx, snapshot, detected)
	if err != nil {
		// The fallback ranker cannot fail; treat anything else as an
		// internal defect rather than losing the analysis.
		return nil, domain.WrapError(domain.ErrCalculation, "ranking failed", err)
	}

	out := &pipelineOutput{frame: frame, ranked: ranked, cfgCtx: cfgCtx, created: time.Now().UTC()}
	a.results.Set(key, out)
	return out, nil
}

// ranker assembles the strategy chain for one request: rules only, or
// remote wrapped in the local fallback.
func (a *Analyzer) ranker(cfgCtx *config.Context, useAI bool) rank.Ranker {
	rules := rank.NewRuleBased(cfgCtx)
	if !useAI || a.remoteCfg.Endpoint == "" {
		return rank.NewFallback(nil, rules)
	}
	return rank.NewFallback(rank.NewRemote(a.remoteCfg, rules), rules)
}

func (a *Analyzer) cacheKey(req Request) string {
	ai := "rules"
	if req.UseAI {
		ai = "ai"
	}
	profile := req.Profile
	if profile == "" {
		profile = string(config.DefaultProfile)
	}
	return strings.Join([]string{
		strings.ToUpper(req.Symbol), string(req.Period), profile,
		config.Fingerprint(req.Overrides), ai,
	}, "|")
}

// buildAnalysis projects pipeline output into the persisted record,
// truncating signals to the profile's hard maximum.
func (a *Analyzer) buildAnalysis(req Request, out *pipelineOutput) domain.Analysis {
	ranked := out.ranked.Signals
	if limit := out.cfgCtx.MaxSignalsReturned(); len(ranked) > limit {
		ranked = ranked[:limit]
	}

	analysis := domain.Analysis{
		Symbol:     out.frame.Symbol(),
		Period:     req.Period,
		Timestamp:  out.created,
		Price:      out.frame.LastClose(),
		Indicators: out.frame.Snapshot(),
		Signals:    ranked,
		AIPowered:  out.ranked.AIPowered,
		ConfigApplied: domain.ConfigEcho{
			Profile:   string(out.cfgCtx.Profile()),
			Overrides: req.Overrides,
		},
	}
	if chg, ok := out.frame.Last(indicators.Change1D); ok {
		analysis.ChangePct = chg
	}
	if v := out.ranked.Verdict; v != nil {
		analysis.AIScore = v.Score
		analysis.AIOutlook = v.Outlook
		analysis.AIAction = v.Action
		analysis.AIConfidence = v.Confidence
		analysis.AISummary = v.Summary
	}
	return analysis
}

// Describe returns a compact log line for a request, used by fan-out
// operations when recording per-symbol failures.
func Describe(req Request) string {
	return fmt.Sprintf("%s/%s profile=%s ai=%t", req.Symbol, req.Period, req.Profile, req.UseAI)
}
