package risk

import (
	"fmt"
	"math"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

// StopPlacement is a validated stop with its distance bounds applied.
type StopPlacement struct {
	Stop     float64
	Distance float64 // |entry - stop|
}

// PlaceStop computes the ATR stop on the opposing side of the bias,
// clamps it to the invalidation level, and enforces the min/max ATR
// distance bounds. A violated bound comes back as the corresponding
// suppression.
func PlaceStop(entry, atr, invalidation float64, bias domain.Bias, tf domain.Timeframe, ctx *config.Context) (StopPlacement, *domain.SuppressionReason) {
	mult := ctx.StopATRMultiple(tf)
	raw := entry - atr*mult
	if bias == domain.BiasBearish {
		raw = entry + atr*mult
	}

	// Never hold a position past the level where the thesis has
	// already failed.
	stop := raw
	if bias == domain.BiasBullish && stop < invalidation {
		stop = invalidation
	}
	if bias == domain.BiasBearish && stop > invalidation {
		stop = invalidation
	}

	distance := math.Abs(entry - stop)
	minDist := ctx.StopMinATRMultiple() * atr
	maxDist := ctx.StopMaxATRMultiple() * atr

	if distance < minDist {
		return StopPlacement{}, &domain.SuppressionReason{
			Code:      domain.SuppressStopTooTight,
			Message:   fmt.Sprintf("stop distance %.2f below minimum %.2f (%.1fx ATR)", distance, minDist, ctx.StopMinATRMultiple()),
			Threshold: minDist,
			Actual:    distance,
		}
	}
	if distance > maxDist {
		return StopPlacement{}, &domain.SuppressionReason{
			Code:      domain.SuppressStopTooWide,
			Message:   fmt.Sprintf("stop distance %.2f above maximum %.2f (%.1fx ATR)", distance, maxDist, ctx.StopMaxATRMultiple()),
			Threshold: maxDist,
			Actual:    distance,
		}
	}
	return StopPlacement{Stop: stop, Distance: distance}, nil
}
