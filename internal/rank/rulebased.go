package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

// Strength base scores. Category bonuses from the config context are
// added on top, and the result is clamped to [0, 100].
const (
	scoreStrong      = 75
	scoreDirectional = 55
	scoreSignificant = 60
	scoreNotable     = 40
	scoreNeutral     = 25
)

// RuleBased is the deterministic scorer and the fallback for the remote
// ranker. Always available, no I/O.
type RuleBased struct {
	ctx *config.Context
}

// NewRuleBased creates a rule-based ranker bound to a request config.
func NewRuleBased(cfgCtx *config.Context) *RuleBased {
	return &RuleBased{ctx: cfgCtx}
}

// Rank scores by strength keyword plus category bonus and sorts by score
// descending, breaking ties by original index so repeated runs agree.
func (r *RuleBased) Rank(_ context.Context, _ Snapshot, signals []domain.Signal) (Result, error) {
	type indexed struct {
		sig domain.Signal
		idx int
	}
	ranked := make([]indexed, len(signals))
	for i, s := range signals {
		s.Score = r.score(s)
		s.Rationale = fmt.Sprintf("%s signal in %s with base strength %s",
			s.Name, s.Category, s.Strength)
		ranked[i] = indexed{sig: s, idx: i}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].sig.Score != ranked[j].sig.Score {
			return ranked[i].sig.Score > ranked[j].sig.Score
		}
		return ranked[i].idx < ranked[j].idx
	})

	out := make([]domain.Signal, len(ranked))
	for i, r := range ranked {
		out[i] = r.sig
	}
	return Result{Signals: out}, nil
}

func (r *RuleBased) score(s domain.Signal) float64 {
	var base float64
	switch {
	case s.Strength.IsStrong():
		base = scoreStrong
	case s.Strength == domain.Significant:
		base = scoreSignificant
	case s.Strength == domain.Bullish || s.Strength == domain.Bearish:
		base = scoreDirectional
	case s.Strength == domain.Notable:
		base = scoreNotable
	default:
		base = scoreNeutral
	}
	score := base + r.ctx.CategoryBonus(s.Category)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
