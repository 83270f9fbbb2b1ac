package domain

// Strength grades how decisive a detected signal is.
type Strength string

const (
	StrongBullish Strength = "STRONG_BULLISH"
	Bullish       Strength = "BULLISH"
	Notable       Strength = "NOTABLE"
	Neutral       Strength = "NEUTRAL"
	Bearish       Strength = "BEARISH"
	StrongBearish Strength = "STRONG_BEARISH"
	Significant   Strength = "SIGNIFICANT"
)

// IsBullish reports whether the strength leans long.
func (s Strength) IsBullish() bool { return s == Bullish || s == StrongBullish }

// IsBearish reports whether the strength leans short.
func (s Strength) IsBearish() bool { return s == Bearish || s == StrongBearish }

// IsStrong reports whether the strength is a STRONG_* grade.
func (s Strength) IsStrong() bool { return s == StrongBullish || s == StrongBearish }

// Category identifies which detector family produced a signal. Detection
// output is ordered by this list, then chronologically within a category.
type Category string

const (
	CategoryMACross     Category = "MA_CROSS"
	CategoryMATrend     Category = "MA_TREND"
	CategoryRSI         Category = "RSI"
	CategoryMACD        Category = "MACD"
	CategoryBollinger   Category = "BOLLINGER"
	CategoryStochastic  Category = "STOCHASTIC"
	CategoryVolume      Category = "VOLUME"
	CategoryTrend       Category = "TREND"
	CategoryADX         Category = "ADX"
	CategoryPriceAction Category = "PRICE_ACTION"
)

// CategoryOrder fixes the deterministic ordering of detector output.
var CategoryOrder = []Category{
	CategoryMACross, CategoryMATrend, CategoryRSI, CategoryMACD,
	CategoryBollinger, CategoryStochastic, CategoryVolume,
	CategoryTrend, CategoryADX, CategoryPriceAction,
}

// Signal is one named observation produced by a detector. Score and
// Rationale stay zero until the ranking stage populates them; a Signal is
// otherwise immutable once constructed.
type Signal struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strength    Strength `json:"strength"`
	Category    Category `json:"category"`
	Value       float64  `json:"value,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
}
