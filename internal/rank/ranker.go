// Package rank assigns scores and rationale to detected signals. Two
// strategies sit behind one interface: a deterministic rule-based scorer
// that is always available, and a remote LLM ranker that is recovered
// locally on any failure. Ranking can degrade but never fails the
// analysis.
package rank

import (
	"context"

	"github.com/marketlens/marketlens/internal/domain"
)

// Snapshot is the compact indicator view shipped with the signal set to
// the remote ranker.
type Snapshot struct {
	Symbol     string             `json:"symbol"`
	Price      float64            `json:"price"`
	ChangePct  float64            `json:"change_pct"`
	Indicators map[string]float64 `json:"indicators"`
}

// Verdict is the remote ranker's aggregate read on the symbol.
type Verdict struct {
	Score      float64 `json:"score"`      // 1..100
	Outlook    string  `json:"outlook"`    // BULLISH | NEUTRAL | BEARISH
	Action     string  `json:"action"`     // BUY | SELL | HOLD
	Confidence string  `json:"confidence"` // HIGH | MEDIUM | LOW
	Summary    string  `json:"summary"`
}

// Result is ranked output: signals sorted by score descending with
// deterministic tie-breaks, plus the AI verdict when one was obtained.
type Result struct {
	Signals   []domain.Signal
	Verdict   *Verdict
	AIPowered bool
}

// Ranker scores a signal set. Implementations must not mutate the input
// slice; they return a new ordering.
type Ranker interface {
	Rank(ctx context.Context, snap Snapshot, signals []domain.Signal) (Result, error)
}
