package config

import "github.com/marketlens/marketlens/internal/domain"

// Context is the read-only flattened view of a resolved UserConfig that
// the indicator, detector, and risk components consume. It is built once
// per request and never shared across requests, so those components never
// touch the nested record directly.
type Context struct {
	cfg UserConfig
}

// NewContext flattens a resolved UserConfig.
func NewContext(cfg UserConfig) *Context {
	return &Context{cfg: cfg}
}

// Config exposes the underlying record for components that persist the
// applied configuration; mutation is prevented by value semantics.
func (c *Context) Config() UserConfig { return c.cfg }

func (c *Context) Profile() Profile { return c.cfg.Profile }

// Indicator thresholds.

func (c *Context) RSIPeriod() int                { return c.cfg.Indicators.RSIPeriod }
func (c *Context) RSIOversold() float64          { return c.cfg.Indicators.RSIOversold }
func (c *Context) RSIOverbought() float64        { return c.cfg.Indicators.RSIOverbought }
func (c *Context) RSIExtremeOversold() float64   { return c.cfg.Indicators.RSIExtremeOversold }
func (c *Context) RSIExtremeOverbought() float64 { return c.cfg.Indicators.RSIExtremeOverbought }
func (c *Context) StochasticOversold() float64   { return c.cfg.Indicators.StochasticOversold }
func (c *Context) StochasticOverbought() float64 { return c.cfg.Indicators.StochasticOverbought }
func (c *Context) VolumeSpikeRatio() float64     { return c.cfg.Indicators.VolumeSpikeRatio }
func (c *Context) VolumeExtremeRatio() float64   { return c.cfg.Indicators.VolumeExtremeRatio }
func (c *Context) VolumeDryUpRatio() float64     { return c.cfg.Indicators.VolumeDryUpRatio }
func (c *Context) LargeMovePct() float64         { return c.cfg.Indicators.LargeMovePct }
func (c *Context) GapPct() float64               { return c.cfg.Indicators.GapPct }

// Risk thresholds.

func (c *Context) StopATRMultiple(tf domain.Timeframe) float64 {
	switch tf {
	case domain.TimeframeDay:
		return c.cfg.Risk.StopATRDay
	case domain.TimeframeScalp:
		return c.cfg.Risk.StopATRScalp
	default:
		return c.cfg.Risk.StopATRSwing
	}
}

func (c *Context) StopMinATRMultiple() float64    { return c.cfg.Risk.StopMinATRMultiple }
func (c *Context) StopMaxATRMultiple() float64    { return c.cfg.Risk.StopMaxATRMultiple }
func (c *Context) MinRRRatio() float64            { return c.cfg.Risk.MinRRRatio }
func (c *Context) PreferredRRRatio() float64      { return c.cfg.Risk.PreferredRRRatio }
func (c *Context) VolatilityLow() float64         { return c.cfg.Risk.VolatilityLow }
func (c *Context) VolatilityHigh() float64        { return c.cfg.Risk.VolatilityHigh }
func (c *Context) ADXTrending() float64           { return c.cfg.Risk.ADXTrending }
func (c *Context) ADXNoTrend() float64            { return c.cfg.Risk.ADXNoTrend }
func (c *Context) PositionRiskPct() float64       { return c.cfg.Risk.PositionRiskPct }
func (c *Context) SignalConflictPct() float64     { return c.cfg.Risk.SignalConflictPct }
func (c *Context) SwingLookback() int             { return c.cfg.Risk.SwingLookback }
func (c *Context) OptionMinExpectedMove() float64 { return c.cfg.Risk.OptionMinExpectedMove }
func (c *Context) CallDeltaRange() (float64, float64) {
	return c.cfg.Risk.CallDeltaMin, c.cfg.Risk.CallDeltaMax
}
func (c *Context) PutDeltaRange() (float64, float64) {
	return c.cfg.Risk.PutDeltaMin, c.cfg.Risk.PutDeltaMax
}
func (c *Context) OptionDTERange() (int, int) {
	return c.cfg.Risk.OptionSwingMinDTE, c.cfg.Risk.OptionSwingMaxDTE
}
func (c *Context) OptionSpreadWidthATR() float64 { return c.cfg.Risk.OptionSpreadWidthATR }

// Signal bounds.

func (c *Context) MaxSignalsReturned() int { return c.cfg.Signals.MaxSignalsReturned }
func (c *Context) MaxTradePlans() int      { return c.cfg.Signals.MaxTradePlans }
func (c *Context) TopKForBias() int        { return c.cfg.Signals.TopKForBias }

// CategoryBonus returns the ranking bonus for a category, 0 if unlisted.
func (c *Context) CategoryBonus(cat domain.Category) float64 {
	return c.cfg.Signals.CategoryBonuses[cat]
}
