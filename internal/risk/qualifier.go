package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
)

// Qualifier transforms ranked signals and an indicator frame into either
// trade plans or suppression reasons, never both. All thresholds come
// from the request's config context.
type Qualifier struct {
	ctx *config.Context
}

// NewQualifier binds a qualifier to a request configuration.
func NewQualifier(cfgCtx *config.Context) *Qualifier {
	return &Qualifier{ctx: cfgCtx}
}

// Assess runs the qualification pipeline. The hard gates (volatility,
// trend, signal agreement) are evaluated together so a suppressed result
// lists every reason at once; the structural steps then either produce
// plans or add their own suppression.
func (q *Qualifier) Assess(f *indicators.Frame, ranked []domain.Signal, tfHint domain.Timeframe) domain.RiskAssessment {
	assessment := domain.RiskAssessment{
		Symbol:    f.Symbol(),
		Timeframe: SelectTimeframe(f.Series().Period, tfHint),
		Bias:      domain.BiasNeutral,
	}

	vol, volOK := ClassifyVolatility(f, q.ctx)
	if !volOK {
		assessment.Suppressions = append(assessment.Suppressions, domain.SuppressionReason{
			Code:    domain.SuppressInsufficientData,
			Message: "ATR unavailable, cannot classify volatility",
		})
		return assessment
	}
	assessment.Regime = vol.Regime

	var suppressions []domain.SuppressionReason

	switch vol.Regime {
	case domain.VolatilityHigh:
		suppressions = append(suppressions, domain.SuppressionReason{
			Code:      domain.SuppressVolatilityTooHigh,
			Message:   fmt.Sprintf("ATR %.2f%% of price above the %.2f%% bound", vol.ATRPct, q.ctx.VolatilityHigh()),
			Threshold: q.ctx.VolatilityHigh(),
			Actual:    vol.ATRPct,
		})
	case domain.VolatilityLow:
		suppressions = append(suppressions, domain.SuppressionReason{
			Code:      domain.SuppressVolatilityTooLow,
			Message:   fmt.Sprintf("ATR %.2f%% of price below the %.2f%% bound, not enough motion", vol.ATRPct, q.ctx.VolatilityLow()),
			Threshold: q.ctx.VolatilityLow(),
			Actual:    vol.ATRPct,
		})
	}

	// Trend gate.
	adx, adxOK := f.Last(indicators.ADX)
	if !adxOK {
		suppressions = append(suppressions, domain.SuppressionReason{
			Code:    domain.SuppressInsufficientData,
			Message: "ADX unavailable, cannot gate on trend strength",
		})
	} else if adx < q.ctx.ADXNoTrend() {
		suppressions = append(suppressions, domain.SuppressionReason{
			Code:      domain.SuppressNoTrend,
			Message:   fmt.Sprintf("ADX %.1f below the %.1f no-trend bound", adx, q.ctx.ADXNoTrend()),
			Threshold: q.ctx.ADXNoTrend(),
			Actual:    adx,
		})
	}

	// Directional bias from the ranked signal set.
	bias := AggregateBias(ranked, q.ctx)
	if bias.Bias == domain.BiasNeutral || bias.ConflictPct > q.ctx.SignalConflictPct() {
		suppressions = append(suppressions, domain.SuppressionReason{
			Code: domain.SuppressConflictingSignals,
			Message: fmt.Sprintf("%d bullish vs %d bearish in the top-ranked set (%.0f%% opposing)",
				bias.BullCount, bias.BearCount, bias.ConflictPct*100),
			Threshold: q.ctx.SignalConflictPct(),
			Actual:    bias.ConflictPct,
		})
	} else {
		assessment.Bias = bias.Bias
	}

	if len(suppressions) > 0 {
		assessment.Suppressions = suppressions
		return assessment
	}

	plans, suppression := q.buildPlans(f, bias, vol, assessment.Timeframe)
	if suppression != nil {
		assessment.Suppressions = []domain.SuppressionReason{*suppression}
		return assessment
	}
	assessment.Plans = plans
	return assessment
}

// buildPlans runs the structural half of the pipeline: invalidation,
// stop, targets, R:R, vehicle, quality. It returns either at least one
// plan or exactly one suppression.
func (q *Qualifier) buildPlans(f *indicators.Frame, bias BiasReading, vol VolatilityReading, tf domain.Timeframe) ([]domain.TradePlan, *domain.SuppressionReason) {
	bars := f.Series().Bars
	entry := f.LastClose()

	invalidation, ok := NearestInvalidation(bars, bias.Bias, entry, q.ctx.SwingLookback())
	if !ok {
		return nil, &domain.SuppressionReason{
			Code:    domain.SuppressNoClearInvalidation,
			Message: fmt.Sprintf("no swing structure against a %s bias within %d bars", bias.Bias, q.ctx.SwingLookback()),
		}
	}

	placement, suppression := PlaceStop(entry, vol.ATR, invalidation, bias.Bias, tf, q.ctx)
	if suppression != nil {
		return nil, suppression
	}

	// Candidate targets: the next structural level first, then the
	// preferred-R:R extension. The extension only counts when no nearer
	// structure caps the move before it.
	var targets []float64
	structural, hasStructure := StructuralTarget(bars, bias.Bias, entry, q.ctx.SwingLookback()*2)
	if hasStructure {
		targets = append(targets, structural)
	}
	extension := entry + q.ctx.PreferredRRRatio()*placement.Distance
	if bias.Bias == domain.BiasBearish {
		extension = entry - q.ctx.PreferredRRRatio()*placement.Distance
	}
	capped := hasStructure
	if hasStructure {
		if bias.Bias == domain.BiasBearish {
			capped = extension < structural
		} else {
			capped = extension > structural
		}
	}
	// A wide stop on a bearish read can push the extension through zero;
	// prices never go there.
	if !capped && extension > 0 {
		targets = appendDistinct(targets, extension)
	}

	var plans []domain.TradePlan
	var rrFailure *domain.SuppressionReason
	for _, target := range targets {
		rr := math.Abs(target-entry) / placement.Distance
		if rr < q.ctx.MinRRRatio() {
			if rrFailure == nil {
				rrFailure = &domain.SuppressionReason{
					Code:      domain.SuppressRRUnfavorable,
					Message:   fmt.Sprintf("reward %.2f vs risk %.2f gives R:R %.2f below minimum %.2f", math.Abs(target-entry), placement.Distance, rr, q.ctx.MinRRRatio()),
					Threshold: q.ctx.MinRRRatio(),
					Actual:    rr,
				}
			}
			continue
		}

		vehicle, params := SelectVehicle(entry, target, vol.ATR, bias.Bias, q.ctx)
		plan := domain.TradePlan{
			Symbol:          f.Symbol(),
			Timeframe:       tf,
			Bias:            bias.Bias,
			Entry:           entry,
			Stop:            placement.Stop,
			Target:          target,
			Invalidation:    invalidation,
			RRRatio:         rr,
			ExpectedMovePct: math.Abs(target-entry) / entry * 100,
			MaxLossPct:      placement.Distance / entry * 100,
			Vehicle:         vehicle,
			VehicleParams:   params,
		}
		plan.RiskQuality = q.qualityLabel(rr, vol.Regime, bias.Top)
		if bias.Top != nil {
			plan.PrimarySignal = bias.Top.Name
		}
		plan.SupportingSignals = bias.Supporting(biasAligned(bias.Bias), 3)
		plans = append(plans, plan)
	}

	if len(plans) == 0 {
		if rrFailure != nil {
			return nil, rrFailure
		}
		return nil, &domain.SuppressionReason{
			Code:    domain.SuppressNoClearInvalidation,
			Message: "no viable target beyond the stop distance",
		}
	}

	if limit := q.ctx.MaxTradePlans(); len(plans) > limit {
		plans = plans[:limit]
	}
	log.Debug().Str("symbol", f.Symbol()).Int("plans", len(plans)).
		Str("bias", string(bias.Bias)).Msg("risk qualifier emitted plans")
	return plans, nil
}

// qualityLabel grades an emitted plan for caller-side sorting; it never
// gates emission.
func (q *Qualifier) qualityLabel(rr float64, regime domain.VolatilityRegime, top *domain.Signal) domain.RiskQuality {
	if rr >= q.ctx.PreferredRRRatio() && regime == domain.VolatilityMedium &&
		top != nil && top.Strength.IsStrong() {
		return domain.QualityHigh
	}
	if rr >= q.ctx.MinRRRatio() {
		return domain.QualityMedium
	}
	return domain.QualityLow
}

// appendDistinct adds v unless an existing target is within a tenth of a
// percent of it.
func appendDistinct(targets []float64, v float64) []float64 {
	for _, t := range targets {
		if t != 0 && math.Abs(t-v)/math.Abs(t) < 0.001 {
			return targets
		}
	}
	return append(targets, v)
}

// biasAligned returns the strength filter matching a bias.
func biasAligned(bias domain.Bias) func(domain.Strength) bool {
	if bias == domain.BiasBearish {
		return domain.Strength.IsBearish
	}
	return domain.Strength.IsBullish
}
