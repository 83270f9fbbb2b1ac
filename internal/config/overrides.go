package config

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/marketlens/marketlens/internal/domain"
)

// overrideField describes one overridable key: its valid range, whether it
// must be integral, and where in the nested config it lands. The apply
// function writes into an already-copied UserConfig, so presets are never
// mutated in place.
type overrideField struct {
	min, max float64
	integer  bool
	apply    func(*UserConfig, float64)
}

// overrideSchema is the fixed field-name -> sub-record mapping. Unknown
// keys fail validation; they are never passed through silently.
var overrideSchema = map[string]overrideField{
	// indicators
	"rsi_period":             {2, 100, true, func(c *UserConfig, v float64) { c.Indicators.RSIPeriod = int(v) }},
	"rsi_oversold":           {5, 49, false, func(c *UserConfig, v float64) { c.Indicators.RSIOversold = v }},
	"rsi_overbought":         {51, 95, false, func(c *UserConfig, v float64) { c.Indicators.RSIOverbought = v }},
	"rsi_extreme_oversold":   {1, 40, false, func(c *UserConfig, v float64) { c.Indicators.RSIExtremeOversold = v }},
	"rsi_extreme_overbought": {60, 99, false, func(c *UserConfig, v float64) { c.Indicators.RSIExtremeOverbought = v }},
	"macd_fast":              {2, 50, true, func(c *UserConfig, v float64) { c.Indicators.MACDFast = int(v) }},
	"macd_slow":              {5, 100, true, func(c *UserConfig, v float64) { c.Indicators.MACDSlow = int(v) }},
	"macd_signal":            {2, 50, true, func(c *UserConfig, v float64) { c.Indicators.MACDSignal = int(v) }},
	"bollinger_period":       {5, 100, true, func(c *UserConfig, v float64) { c.Indicators.BollingerPeriod = int(v) }},
	"bollinger_std_dev":      {0.5, 4, false, func(c *UserConfig, v float64) { c.Indicators.BollingerStdDev = v }},
	"stochastic_k":           {3, 50, true, func(c *UserConfig, v float64) { c.Indicators.StochasticK = int(v) }},
	"stochastic_d":           {1, 20, true, func(c *UserConfig, v float64) { c.Indicators.StochasticD = int(v) }},
	"adx_period":             {5, 50, true, func(c *UserConfig, v float64) { c.Indicators.ADXPeriod = int(v) }},
	"atr_period":             {5, 50, true, func(c *UserConfig, v float64) { c.Indicators.ATRPeriod = int(v) }},
	"volume_spike_ratio":     {1.1, 10, false, func(c *UserConfig, v float64) { c.Indicators.VolumeSpikeRatio = v }},
	"large_move_pct":         {0.5, 20, false, func(c *UserConfig, v float64) { c.Indicators.LargeMovePct = v }},
	"gap_pct":                {0.2, 10, false, func(c *UserConfig, v float64) { c.Indicators.GapPct = v }},

	// risk
	"stop_atr_swing":           {0.5, 5, false, func(c *UserConfig, v float64) { c.Risk.StopATRSwing = v }},
	"stop_atr_day":             {0.3, 3, false, func(c *UserConfig, v float64) { c.Risk.StopATRDay = v }},
	"stop_atr_scalp":           {0.2, 2, false, func(c *UserConfig, v float64) { c.Risk.StopATRScalp = v }},
	"min_rr_ratio":             {1.0, 5, false, func(c *UserConfig, v float64) { c.Risk.MinRRRatio = v }},
	"preferred_rr_ratio":       {1.0, 8, false, func(c *UserConfig, v float64) { c.Risk.PreferredRRRatio = v }},
	"volatility_low":           {0.1, 3, false, func(c *UserConfig, v float64) { c.Risk.VolatilityLow = v }},
	"volatility_high":          {1.0, 12, false, func(c *UserConfig, v float64) { c.Risk.VolatilityHigh = v }},
	"adx_trending":             {10, 50, false, func(c *UserConfig, v float64) { c.Risk.ADXTrending = v }},
	"adx_no_trend":             {5, 40, false, func(c *UserConfig, v float64) { c.Risk.ADXNoTrend = v }},
	"position_risk_pct":        {0.1, 10, false, func(c *UserConfig, v float64) { c.Risk.PositionRiskPct = v }},
	"signal_conflict_pct":      {0.1, 0.9, false, func(c *UserConfig, v float64) { c.Risk.SignalConflictPct = v }},
	"swing_lookback":           {10, 200, true, func(c *UserConfig, v float64) { c.Risk.SwingLookback = int(v) }},
	"option_min_expected_move": {1, 30, false, func(c *UserConfig, v float64) { c.Risk.OptionMinExpectedMove = v }},

	// momentum
	"short_term_weight":     {0, 1, false, func(c *UserConfig, v float64) { c.Momentum.ShortTermWeight = v }},
	"medium_term_weight":    {0, 1, false, func(c *UserConfig, v float64) { c.Momentum.MediumTermWeight = v }},
	"long_term_weight":      {0, 1, false, func(c *UserConfig, v float64) { c.Momentum.LongTermWeight = v }},
	"volume_confirm_weight": {0, 1, false, func(c *UserConfig, v float64) { c.Momentum.VolumeConfirmWeight = v }},

	// signals
	"max_signals_returned": {1, 200, true, func(c *UserConfig, v float64) { c.Signals.MaxSignalsReturned = int(v) }},
	"max_trade_plans":      {1, 20, true, func(c *UserConfig, v float64) { c.Signals.MaxTradePlans = int(v) }},
	"top_k_for_bias":       {3, 50, true, func(c *UserConfig, v float64) { c.Signals.TopKForBias = int(v) }},
}

// Resolve produces the effective UserConfig for (profile, overrides).
// Validation reports every offending key at once, not just the first.
func Resolve(profileName string, overrides map[string]float64) (UserConfig, error) {
	profile, err := ParseProfile(profileName)
	if err != nil {
		return UserConfig{}, err
	}

	cfg := profilePreset(profile)
	// Category bonuses live in a map; copy so the resolved config shares
	// nothing with the preset.
	bonuses := make(map[domain.Category]float64, len(cfg.Signals.CategoryBonuses))
	for k, v := range cfg.Signals.CategoryBonuses {
		bonuses[k] = v
	}
	cfg.Signals.CategoryBonuses = bonuses

	if len(overrides) == 0 {
		return cfg, nil
	}

	var offending []string
	for key, value := range overrides {
		field, ok := overrideSchema[key]
		switch {
		case !ok:
			offending = append(offending, fmt.Sprintf("%s: unknown key", key))
		case math.IsNaN(value) || math.IsInf(value, 0):
			offending = append(offending, fmt.Sprintf("%s: not a finite number", key))
		case field.integer && value != math.Trunc(value):
			offending = append(offending, fmt.Sprintf("%s: must be an integer", key))
		case value < field.min || value > field.max:
			offending = append(offending,
				fmt.Sprintf("%s: %g out of range [%g, %g]", key, value, field.min, field.max))
		}
	}
	if len(offending) > 0 {
		sort.Strings(offending)
		return UserConfig{}, domain.NewError(domain.ErrInvalidOverride,
			"invalid overrides: "+strings.Join(offending, "; "))
	}

	// Apply in sorted key order for determinism.
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		overrideSchema[k].apply(&cfg, overrides[k])
	}
	return cfg, nil
}

// Fingerprint returns a stable hash of the sorted override map, used in
// analysis cache keys so differently-tuned requests never collide.
func Fingerprint(overrides map[string]float64) string {
	if len(overrides) == 0 {
		return "base"
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%g;", k, overrides[k])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
