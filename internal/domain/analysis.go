package domain

import "time"

// Analysis is the full per-symbol output of the core pipeline and the
// shape persisted to the document store.
type Analysis struct {
	Symbol        string             `json:"symbol"`
	Period        Period             `json:"period"`
	Timestamp     time.Time          `json:"timestamp"`
	Price         float64            `json:"price"`
	ChangePct     float64            `json:"change_pct"`
	Indicators    map[string]float64 `json:"indicators"`
	Signals       []Signal           `json:"signals"`
	AIScore       float64            `json:"ai_score,omitempty"`
	AIOutlook     string             `json:"ai_outlook,omitempty"`
	AIAction      string             `json:"ai_action,omitempty"`
	AIConfidence  string             `json:"ai_confidence,omitempty"`
	AISummary     string             `json:"ai_summary,omitempty"`
	AIPowered     bool               `json:"ai_powered"`
	ConfigApplied ConfigEcho         `json:"config_applied"`
}

// ConfigEcho echoes the resolved configuration back to the caller so a
// cached analysis is attributable to the profile that produced it.
type ConfigEcho struct {
	Profile   string             `json:"profile"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
}

// BullishCount tallies signals leaning long.
func (a Analysis) BullishCount() int {
	n := 0
	for _, s := range a.Signals {
		if s.Strength.IsBullish() {
			n++
		}
	}
	return n
}

// BearishCount tallies signals leaning short.
func (a Analysis) BearishCount() int {
	n := 0
	for _, s := range a.Signals {
		if s.Strength.IsBearish() {
			n++
		}
	}
	return n
}

// TopScore returns the highest signal score, or 0 with no signals.
func (a Analysis) TopScore() float64 {
	best := 0.0
	for _, s := range a.Signals {
		if s.Score > best {
			best = s.Score
		}
	}
	return best
}

// SymbolError records a per-symbol failure inside a fan-out operation.
// Fan-out never aborts on individual symbols; it accumulates these.
type SymbolError struct {
	Symbol  string    `json:"symbol"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// QualifiedTrade pairs a symbol's best trade plan with its analysis score
// for scanner ranking.
type QualifiedTrade struct {
	Symbol    string    `json:"symbol"`
	Plan      TradePlan `json:"plan"`
	Score     float64   `json:"score"`
	Signals   int       `json:"signal_count"`
	Timestamp time.Time `json:"timestamp"`
}

// ScanResult is the outcome of a universe scan and the shape persisted as
// the daily scan document.
type ScanResult struct {
	ScanID          string           `json:"scan_id"`
	Universe        string           `json:"universe"`
	TotalScanned    int              `json:"total_scanned"`
	QualifiedTrades []QualifiedTrade `json:"qualified_trades"`
	Errors          []SymbolError    `json:"errors,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationSeconds float64          `json:"duration_seconds"`
}
