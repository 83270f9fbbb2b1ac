package config

import (
	"fmt"

	"github.com/marketlens/marketlens/internal/domain"
)

// Profile names the three built-in threshold presets.
type Profile string

const (
	ProfileAverse  Profile = "averse"
	ProfileNeutral Profile = "neutral"
	ProfileRisky   Profile = "risky"
)

// DefaultProfile applies when the caller names none.
const DefaultProfile = ProfileNeutral

// IndicatorConfig holds oscillator and band thresholds consumed by the
// indicator engine and signal detectors.
type IndicatorConfig struct {
	RSIPeriod            int     `yaml:"rsi_period" json:"rsi_period"`
	RSIOversold          float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	RSIOverbought        float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	RSIExtremeOversold   float64 `yaml:"rsi_extreme_oversold" json:"rsi_extreme_oversold"`
	RSIExtremeOverbought float64 `yaml:"rsi_extreme_overbought" json:"rsi_extreme_overbought"`
	MACDFast             int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow             int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal           int     `yaml:"macd_signal" json:"macd_signal"`
	BollingerPeriod      int     `yaml:"bollinger_period" json:"bollinger_period"`
	BollingerStdDev      float64 `yaml:"bollinger_std_dev" json:"bollinger_std_dev"`
	StochasticK          int     `yaml:"stochastic_k" json:"stochastic_k"`
	StochasticD          int     `yaml:"stochastic_d" json:"stochastic_d"`
	StochasticOversold   float64 `yaml:"stochastic_oversold" json:"stochastic_oversold"`
	StochasticOverbought float64 `yaml:"stochastic_overbought" json:"stochastic_overbought"`
	ADXPeriod            int     `yaml:"adx_period" json:"adx_period"`
	ATRPeriod            int     `yaml:"atr_period" json:"atr_period"`
	VolumeSpikeRatio     float64 `yaml:"volume_spike_ratio" json:"volume_spike_ratio"`
	VolumeExtremeRatio   float64 `yaml:"volume_extreme_ratio" json:"volume_extreme_ratio"`
	VolumeDryUpRatio     float64 `yaml:"volume_dry_up_ratio" json:"volume_dry_up_ratio"`
	LargeMovePct         float64 `yaml:"large_move_pct" json:"large_move_pct"`
	GapPct               float64 `yaml:"gap_pct" json:"gap_pct"`
}

// RiskConfig holds every threshold the risk qualifier reads.
type RiskConfig struct {
	StopATRSwing          float64 `yaml:"stop_atr_swing" json:"stop_atr_swing"`
	StopATRDay            float64 `yaml:"stop_atr_day" json:"stop_atr_day"`
	StopATRScalp          float64 `yaml:"stop_atr_scalp" json:"stop_atr_scalp"`
	StopMinATRMultiple    float64 `yaml:"stop_min_atr_multiple" json:"stop_min_atr_multiple"`
	StopMaxATRMultiple    float64 `yaml:"stop_max_atr_multiple" json:"stop_max_atr_multiple"`
	MinRRRatio            float64 `yaml:"min_rr_ratio" json:"min_rr_ratio"`
	PreferredRRRatio      float64 `yaml:"preferred_rr_ratio" json:"preferred_rr_ratio"`
	VolatilityLow         float64 `yaml:"volatility_low" json:"volatility_low"`
	VolatilityHigh        float64 `yaml:"volatility_high" json:"volatility_high"`
	ADXTrending           float64 `yaml:"adx_trending" json:"adx_trending"`
	ADXNoTrend            float64 `yaml:"adx_no_trend" json:"adx_no_trend"`
	PositionRiskPct       float64 `yaml:"position_risk_pct" json:"position_risk_pct"`
	SignalConflictPct     float64 `yaml:"signal_conflict_pct" json:"signal_conflict_pct"`
	SwingLookback         int     `yaml:"swing_lookback" json:"swing_lookback"`
	OptionMinExpectedMove float64 `yaml:"option_min_expected_move" json:"option_min_expected_move"`
	CallDeltaMin          float64 `yaml:"call_delta_min" json:"call_delta_min"`
	CallDeltaMax          float64 `yaml:"call_delta_max" json:"call_delta_max"`
	PutDeltaMin           float64 `yaml:"put_delta_min" json:"put_delta_min"`
	PutDeltaMax           float64 `yaml:"put_delta_max" json:"put_delta_max"`
	OptionSwingMinDTE     int     `yaml:"option_swing_min_dte" json:"option_swing_min_dte"`
	OptionSwingMaxDTE     int     `yaml:"option_swing_max_dte" json:"option_swing_max_dte"`
	OptionSpreadWidthATR  float64 `yaml:"option_spread_width_atr" json:"option_spread_width_atr"`
}

// MomentumConfig holds the weighting parameters for momentum aggregation.
type MomentumConfig struct {
	ShortTermWeight     float64 `yaml:"short_term_weight" json:"short_term_weight"`
	MediumTermWeight    float64 `yaml:"medium_term_weight" json:"medium_term_weight"`
	LongTermWeight      float64 `yaml:"long_term_weight" json:"long_term_weight"`
	VolumeConfirmWeight float64 `yaml:"volume_confirm_weight" json:"volume_confirm_weight"`
}

// SignalConfig bounds detector and ranker output.
type SignalConfig struct {
	MaxSignalsReturned int                         `yaml:"max_signals_returned" json:"max_signals_returned"`
	MaxTradePlans      int                         `yaml:"max_trade_plans" json:"max_trade_plans"`
	TopKForBias        int                         `yaml:"top_k_for_bias" json:"top_k_for_bias"`
	CategoryBonuses    map[domain.Category]float64 `yaml:"category_bonuses" json:"category_bonuses"`
}

// UserConfig is the resolved per-request configuration. It is immutable:
// override application copies sub-records, never mutates them.
type UserConfig struct {
	Profile    Profile         `yaml:"profile" json:"profile"`
	Indicators IndicatorConfig `yaml:"indicators" json:"indicators"`
	Risk       RiskConfig      `yaml:"risk" json:"risk"`
	Momentum   MomentumConfig  `yaml:"momentum" json:"momentum"`
	Signals    SignalConfig    `yaml:"signals" json:"signals"`
}

// defaultCategoryBonuses weight the categories that historically carry the
// most follow-through.
func defaultCategoryBonuses() map[domain.Category]float64 {
	return map[domain.Category]float64{
		domain.CategoryMACross:     10,
		domain.CategoryTrend:       8,
		domain.CategoryMACD:        6,
		domain.CategoryVolume:      5,
		domain.CategoryRSI:         4,
		domain.CategoryBollinger:   3,
		domain.CategoryPriceAction: 3,
		domain.CategoryStochastic:  2,
	}
}

// baseConfig carries the values shared by all three profiles.
func baseConfig() UserConfig {
	return UserConfig{
		Indicators: IndicatorConfig{
			RSIPeriod:            14,
			MACDFast:             12,
			MACDSlow:             26,
			MACDSignal:           9,
			BollingerPeriod:      20,
			BollingerStdDev:      2.0,
			StochasticK:          14,
			StochasticD:          3,
			StochasticOversold:   20,
			StochasticOverbought: 80,
			ADXPeriod:            14,
			ATRPeriod:            14,
			VolumeSpikeRatio:     2.0,
			VolumeExtremeRatio:   3.0,
			VolumeDryUpRatio:     0.5,
			LargeMovePct:         3.0,
			GapPct:               1.5,
		},
		Risk: RiskConfig{
			StopMinATRMultiple:    0.8,
			StopMaxATRMultiple:    4.0,
			VolatilityLow:         1.0,
			SwingLookback:         40,
			OptionMinExpectedMove: 5.0,
			CallDeltaMin:          0.55,
			CallDeltaMax:          0.70,
			PutDeltaMin:           -0.70,
			PutDeltaMax:           -0.55,
			OptionSwingMinDTE:     30,
			OptionSwingMaxDTE:     60,
			OptionSpreadWidthATR:  2.0,
		},
		Momentum: MomentumConfig{
			ShortTermWeight:     0.5,
			MediumTermWeight:    0.3,
			LongTermWeight:      0.2,
			VolumeConfirmWeight: 0.15,
		},
		Signals: SignalConfig{
			TopKForBias:     10,
			CategoryBonuses: defaultCategoryBonuses(),
		},
	}
}

// profilePreset applies the per-profile threshold triple onto the base.
func profilePreset(p Profile) UserConfig {
	cfg := baseConfig()
	cfg.Profile = p
	switch p {
	case ProfileRisky:
		cfg.Indicators.RSIOversold = 35
		cfg.Indicators.RSIOverbought = 65
		cfg.Indicators.RSIExtremeOversold = 25
		cfg.Indicators.RSIExtremeOverbought = 75
		cfg.Risk.MinRRRatio = 1.2
		cfg.Risk.PreferredRRRatio = 2.0
		cfg.Risk.StopATRSwing = 1.5
		cfg.Risk.StopATRDay = 1.0
		cfg.Risk.StopATRScalp = 0.5
		cfg.Risk.VolatilityHigh = 4.0
		cfg.Risk.ADXTrending = 20
		cfg.Risk.ADXNoTrend = 15
		cfg.Risk.PositionRiskPct = 3.0
		cfg.Risk.SignalConflictPct = 0.50
		cfg.Signals.MaxSignalsReturned = 75
		cfg.Signals.MaxTradePlans = 5
	case ProfileNeutral:
		cfg.Indicators.RSIOversold = 30
		cfg.Indicators.RSIOverbought = 70
		cfg.Indicators.RSIExtremeOversold = 20
		cfg.Indicators.RSIExtremeOverbought = 80
		cfg.Risk.MinRRRatio = 1.5
		cfg.Risk.PreferredRRRatio = 2.5
		cfg.Risk.StopATRSwing = 2.0
		cfg.Risk.StopATRDay = 1.2
		cfg.Risk.StopATRScalp = 0.7
		cfg.Risk.VolatilityHigh = 3.0
		cfg.Risk.ADXTrending = 25
		cfg.Risk.ADXNoTrend = 20
		cfg.Risk.PositionRiskPct = 2.0
		cfg.Risk.SignalConflictPct = 0.40
		cfg.Signals.MaxSignalsReturned = 50
		cfg.Signals.MaxTradePlans = 3
	case ProfileAverse:
		cfg.Indicators.RSIOversold = 25
		cfg.Indicators.RSIOverbought = 75
		cfg.Indicators.RSIExtremeOversold = 15
		cfg.Indicators.RSIExtremeOverbought = 85
		cfg.Risk.MinRRRatio = 2.0
		cfg.Risk.PreferredRRRatio = 3.0
		cfg.Risk.StopATRSwing = 2.5
		cfg.Risk.StopATRDay = 1.5
		cfg.Risk.StopATRScalp = 0.8
		cfg.Risk.VolatilityHigh = 2.5
		cfg.Risk.ADXTrending = 30
		cfg.Risk.ADXNoTrend = 20
		cfg.Risk.PositionRiskPct = 1.0
		cfg.Risk.SignalConflictPct = 0.30
		cfg.Signals.MaxSignalsReturned = 30
		cfg.Signals.MaxTradePlans = 2
	}
	return cfg
}

// ParseProfile validates a profile name. Empty resolves to neutral.
func ParseProfile(name string) (Profile, error) {
	switch Profile(name) {
	case "":
		return DefaultProfile, nil
	case ProfileAverse, ProfileNeutral, ProfileRisky:
		return Profile(name), nil
	}
	return "", domain.NewError(domain.ErrUnknownProfile,
		fmt.Sprintf("unknown risk profile %q, accepted: averse, neutral, risky", name))
}
