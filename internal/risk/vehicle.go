package risk

import (
	"math"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

// SelectVehicle picks the trading instrument for a plan. Stock is the
// default; options apply only when the expected move clears the
// configured minimum, since small moves cannot overcome the premium.
func SelectVehicle(entry, target, atr float64, bias domain.Bias, ctx *config.Context) (domain.Vehicle, *domain.VehicleParams) {
	expectedMovePct := math.Abs(target-entry) / entry * 100
	if expectedMovePct < ctx.OptionMinExpectedMove() {
		return domain.VehicleStock, nil
	}

	minDTE, maxDTE := ctx.OptionDTERange()
	params := &domain.VehicleParams{
		MinDTE:      minDTE,
		MaxDTE:      maxDTE,
		SpreadWidth: ctx.OptionSpreadWidthATR() * atr,
	}

	if bias == domain.BiasBearish {
		params.DeltaMin, params.DeltaMax = ctx.PutDeltaRange()
		return domain.VehicleOptionPut, params
	}
	params.DeltaMin, params.DeltaMax = ctx.CallDeltaRange()
	return domain.VehicleOptionCall, params
}
