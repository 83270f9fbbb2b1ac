package domain

// VolatilityRegime classifies ATR as a percent of price.
type VolatilityRegime string

const (
	VolatilityLow    VolatilityRegime = "LOW"
	VolatilityMedium VolatilityRegime = "MEDIUM"
	VolatilityHigh   VolatilityRegime = "HIGH"
)

// Timeframe selects which stop ATR multiple applies.
type Timeframe string

const (
	TimeframeSwing Timeframe = "swing"
	TimeframeDay   Timeframe = "day"
	TimeframeScalp Timeframe = "scalp"
)

// Bias is the aggregate direction read from the ranked signal set.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// RiskQuality labels how clean an emitted plan is. It never gates
// emission; callers use it for sorting.
type RiskQuality string

const (
	QualityHigh   RiskQuality = "HIGH"
	QualityMedium RiskQuality = "MEDIUM"
	QualityLow    RiskQuality = "LOW"
)

// qualityRank orders HIGH > MEDIUM > LOW for sorting.
var qualityRank = map[RiskQuality]int{QualityHigh: 3, QualityMedium: 2, QualityLow: 1}

// Rank returns a sortable weight for the quality label.
func (q RiskQuality) Rank() int { return qualityRank[q] }

// Vehicle is the instrument a plan trades.
type Vehicle string

const (
	VehicleStock        Vehicle = "STOCK"
	VehicleOptionCall   Vehicle = "OPTION_CALL"
	VehicleOptionPut    Vehicle = "OPTION_PUT"
	VehicleOptionSpread Vehicle = "OPTION_SPREAD"
)

// VehicleParams carries option parameters; present only when the vehicle
// is an option.
type VehicleParams struct {
	MinDTE      int     `json:"min_dte"`
	MaxDTE      int     `json:"max_dte"`
	DeltaMin    float64 `json:"delta_min"`
	DeltaMax    float64 `json:"delta_max"`
	SpreadWidth float64 `json:"spread_width,omitempty"`
}

// TradePlan is one actionable plan emitted by the risk qualifier.
// Invariants: RRRatio >= the configured minimum; for a bullish bias
// Invalidation <= Stop < Entry < Target, mirrored for bearish.
type TradePlan struct {
	Symbol            string         `json:"symbol"`
	Timeframe         Timeframe      `json:"timeframe"`
	Bias              Bias           `json:"bias"`
	RiskQuality       RiskQuality    `json:"risk_quality"`
	Entry             float64        `json:"entry"`
	Stop              float64        `json:"stop"`
	Target            float64        `json:"target"`
	Invalidation      float64        `json:"invalidation"`
	RRRatio           float64        `json:"rr_ratio"`
	ExpectedMovePct   float64        `json:"expected_move_pct"`
	MaxLossPct        float64        `json:"max_loss_pct"`
	Vehicle           Vehicle        `json:"vehicle"`
	VehicleParams     *VehicleParams `json:"vehicle_params,omitempty"`
	PrimarySignal     string         `json:"primary_signal"`
	SupportingSignals []string       `json:"supporting_signals,omitempty"`
}

// SuppressionCode is the closed set of machine-readable reasons the risk
// qualifier refuses to emit a plan. Suppressions are outputs, not errors.
type SuppressionCode string

const (
	SuppressStopTooWide         SuppressionCode = "STOP_TOO_WIDE"
	SuppressStopTooTight        SuppressionCode = "STOP_TOO_TIGHT"
	SuppressRRUnfavorable       SuppressionCode = "RR_UNFAVORABLE"
	SuppressNoClearInvalidation SuppressionCode = "NO_CLEAR_INVALIDATION"
	SuppressVolatilityTooHigh   SuppressionCode = "VOLATILITY_TOO_HIGH"
	SuppressVolatilityTooLow    SuppressionCode = "VOLATILITY_TOO_LOW"
	SuppressNoTrend             SuppressionCode = "NO_TREND"
	SuppressConflictingSignals  SuppressionCode = "CONFLICTING_SIGNALS"
	SuppressInsufficientData    SuppressionCode = "INSUFFICIENT_DATA"
	SuppressNearEarnings        SuppressionCode = "NEAR_EARNINGS"
	SuppressMarketClosed        SuppressionCode = "MARKET_CLOSED"
)

// SuppressionReason explains one failed qualification check. Threshold and
// Actual are populated for ratio-based checks.
type SuppressionReason struct {
	Code      SuppressionCode `json:"code"`
	Message   string          `json:"message"`
	Threshold float64         `json:"threshold,omitempty"`
	Actual    float64         `json:"actual,omitempty"`
}

// RiskAssessment is the risk qualifier's verdict for one symbol. Exactly
// one of Plans / Suppressions is non-empty.
type RiskAssessment struct {
	Symbol       string              `json:"symbol"`
	Regime       VolatilityRegime    `json:"volatility_regime,omitempty"`
	Timeframe    Timeframe           `json:"timeframe"`
	Bias         Bias                `json:"bias"`
	Plans        []TradePlan         `json:"plans,omitempty"`
	Suppressions []SuppressionReason `json:"suppressions,omitempty"`
}

// Actionable reports whether the assessment produced at least one plan.
func (a RiskAssessment) Actionable() bool { return len(a.Plans) > 0 }
