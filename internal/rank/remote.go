package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/marketlens/marketlens/internal/domain"
)

// RemoteConfig configures the LLM ranker transport.
type RemoteConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	MinCallDelay  time.Duration `yaml:"min_call_delay"`
}

// Remote ranks by calling the external LLM scoring service. Calls are
// bounded by a concurrency semaphore and paced by a minimum inter-call
// delay. Any failure is returned to the caller; composition with the
// rule-based fallback happens in Fallback.
type Remote struct {
	cfg     RemoteConfig
	client  *http.Client
	sem     chan struct{}
	limiter *rate.Limiter
	rules   *RuleBased
}

// NewRemote creates the remote ranker. The rule-based scorer supplies
// per-signal scores; the remote verdict supplies the aggregate score and
// the rationale.
func NewRemote(cfg RemoteConfig, rules *RuleBased) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.MinCallDelay <= 0 {
		cfg.MinCallDelay = 500 * time.Millisecond
	}
	return &Remote{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		limiter: rate.NewLimiter(rate.Every(cfg.MinCallDelay), 1),
		rules:   rules,
	}
}

// rankRequest is the compact JSON payload sent to the ranker service.
type rankRequest struct {
	Model      string             `json:"model,omitempty"`
	Symbol     string             `json:"symbol"`
	Price      float64            `json:"price"`
	ChangePct  float64            `json:"change_pct"`
	Indicators map[string]float64 `json:"indicators"`
	Signals    []rankSignal       `json:"signals"`
}

type rankSignal struct {
	Name     string  `json:"name"`
	Strength string  `json:"strength"`
	Category string  `json:"category"`
	Value    float64 `json:"value,omitempty"`
}

// Rank posts the signal set with the indicator snapshot and folds the
// verdict back onto the rule-ranked signals: scores blend toward the
// aggregate, rationale carries the summary.
func (r *Remote) Rank(ctx context.Context, snap Snapshot, signals []domain.Signal) (Result, error) {
	if r.cfg.Endpoint == "" {
		return Result{}, domain.NewError(domain.ErrRanker, "remote ranker not configured")
	}

	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return Result{}, domain.WrapError(domain.ErrRanker, "ranker queue wait cancelled", ctx.Err())
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return Result{}, domain.WrapError(domain.ErrRanker, "ranker pacing wait cancelled", err)
	}

	verdict, err := r.call(ctx, snap, signals)
	if err != nil {
		return Result{}, err
	}

	base, _ := r.rules.Rank(ctx, snap, signals)
	for i := range base.Signals {
		base.Signals[i].Score = (base.Signals[i].Score + verdict.Score) / 2
		base.Signals[i].Rationale = verdict.Summary
	}
	base.Verdict = verdict
	base.AIPowered = true
	return base, nil
}

func (r *Remote) call(ctx context.Context, snap Snapshot, signals []domain.Signal) (*Verdict, error) {
	payload := rankRequest{
		Model:      r.cfg.Model,
		Symbol:     snap.Symbol,
		Price:      snap.Price,
		ChangePct:  snap.ChangePct,
		Indicators: snap.Indicators,
		Signals:    make([]rankSignal, len(signals)),
	}
	for i, s := range signals {
		payload.Signals[i] = rankSignal{
			Name:     s.Name,
			Strength: string(s.Strength),
			Category: string(s.Category),
			Value:    s.Value,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRanker, "marshal ranker request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(domain.ErrRanker, "build ranker request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRanker, "ranker transport", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.NewError(domain.ErrRateLimited, "ranker rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewError(domain.ErrRanker,
			fmt.Sprintf("ranker returned HTTP %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.WrapError(domain.ErrRanker, "read ranker response", err)
	}

	var verdict Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, domain.WrapError(domain.ErrRanker, "malformed ranker response", err)
	}
	if verdict.Score < 1 || verdict.Score > 100 {
		return nil, domain.NewError(domain.ErrRanker,
			fmt.Sprintf("ranker score %.1f outside 1..100", verdict.Score))
	}

	log.Debug().Str("symbol", snap.Symbol).Float64("score", verdict.Score).
		Str("outlook", verdict.Outlook).Msg("remote ranker verdict")
	return &verdict, nil
}
