package risk

import (
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

// BiasReading aggregates the directional lean of the top-ranked signals.
type BiasReading struct {
	Bias        domain.Bias
	BullCount   int
	BearCount   int
	ConflictPct float64 // opposing-direction share of directional signals
	Top         *domain.Signal
	TopSignals  []domain.Signal // the top-K slice the counts were read from
}

// Supporting lists up to n signal names after the primary whose strength
// satisfies the aligned filter.
func (r BiasReading) Supporting(aligned func(domain.Strength) bool, n int) []string {
	var names []string
	for i, s := range r.TopSignals {
		if i == 0 {
			continue // primary signal, reported separately
		}
		if aligned(s.Strength) {
			names = append(names, s.Name)
			if len(names) == n {
				break
			}
		}
	}
	return names
}

// AggregateBias reads the top-K ranked signals. The ratio of
// opposing-direction signals to all directional signals decides whether
// the picture is tradeable; ties and empty sets come back neutral.
func AggregateBias(ranked []domain.Signal, ctx *config.Context) BiasReading {
	k := ctx.TopKForBias()
	if k > len(ranked) {
		k = len(ranked)
	}

	reading := BiasReading{Bias: domain.BiasNeutral, TopSignals: ranked[:k]}
	if len(ranked) > 0 {
		reading.Top = &ranked[0]
	}

	for i := 0; i < k; i++ {
		switch {
		case ranked[i].Strength.IsBullish():
			reading.BullCount++
		case ranked[i].Strength.IsBearish():
			reading.BearCount++
		}
	}

	directional := reading.BullCount + reading.BearCount
	if directional == 0 {
		reading.ConflictPct = 1.0
		return reading
	}

	minority := reading.BearCount
	if reading.BullCount < reading.BearCount {
		minority = reading.BullCount
	}
	reading.ConflictPct = float64(minority) / float64(directional)

	switch {
	case reading.BullCount > reading.BearCount:
		reading.Bias = domain.BiasBullish
	case reading.BearCount > reading.BullCount:
		reading.Bias = domain.BiasBearish
	}
	return reading
}
