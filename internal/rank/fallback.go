package rank

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/metrics"
)

// Fallback composes a primary ranker with the rule-based scorer. Any
// primary failure — timeout, transport, malformed response, rate limit —
// degrades to rules. Fallback itself never returns an error, so the
// analysis cannot fail because ranking failed.
type Fallback struct {
	primary Ranker
	rules   *RuleBased
}

// NewFallback wraps primary with the rule-based fallback. A nil primary
// means rules-only ranking.
func NewFallback(primary Ranker, rules *RuleBased) *Fallback {
	return &Fallback{primary: primary, rules: rules}
}

// Rank tries the primary ranker and falls back to rules on any error.
func (f *Fallback) Rank(ctx context.Context, snap Snapshot, signals []domain.Signal) (Result, error) {
	if f.primary != nil {
		res, err := f.primary.Rank(ctx, snap, signals)
		if err == nil {
			return res, nil
		}
		metrics.RankerFallbacks.Inc()
		log.Warn().Err(err).Str("symbol", snap.Symbol).
			Str("code", string(domain.CodeOf(err))).
			Msg("remote ranker failed, falling back to rule-based scoring")
	}
	return f.rules.Rank(ctx, snap, signals)
}
