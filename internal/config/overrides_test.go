package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/domain"
)

func TestResolveDefaultsToNeutral(t *testing.T) {
	cfg, err := Resolve("", nil)
	require.NoError(t, err)
	assert.Equal(t, ProfileNeutral, cfg.Profile)
	assert.Equal(t, 1.5, cfg.Risk.MinRRRatio)
	assert.Equal(t, 50, cfg.Signals.MaxSignalsReturned)
}

func TestResolveProfilePresets(t *testing.T) {
	cases := []struct {
		profile       string
		minRR         float64
		stopSwing     float64
		volHigh       float64
		adxTrending   float64
		maxSignals    int
		maxPlans      int
		rsiOversold   float64
		rsiOverbought float64
	}{
		{"risky", 1.2, 1.5, 4.0, 20, 75, 5, 35, 65},
		{"neutral", 1.5, 2.0, 3.0, 25, 50, 3, 30, 70},
		{"averse", 2.0, 2.5, 2.5, 30, 30, 2, 25, 75},
	}
	for _, tc := range cases {
		t.Run(tc.profile, func(t *testing.T) {
			cfg, err := Resolve(tc.profile, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.minRR, cfg.Risk.MinRRRatio)
			assert.Equal(t, tc.stopSwing, cfg.Risk.StopATRSwing)
			assert.Equal(t, tc.volHigh, cfg.Risk.VolatilityHigh)
			assert.Equal(t, tc.adxTrending, cfg.Risk.ADXTrending)
			assert.Equal(t, tc.maxSignals, cfg.Signals.MaxSignalsReturned)
			assert.Equal(t, tc.maxPlans, cfg.Signals.MaxTradePlans)
			assert.Equal(t, tc.rsiOversold, cfg.Indicators.RSIOversold)
			assert.Equal(t, tc.rsiOverbought, cfg.Indicators.RSIOverbought)
		})
	}
}

func TestResolveUnknownProfile(t *testing.T) {
	_, err := Resolve("yolo", nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrUnknownProfile))
}

func TestResolveOverridesModifyNestedFields(t *testing.T) {
	cfg, err := Resolve("neutral", map[string]float64{
		"rsi_oversold":   25,
		"min_rr_ratio":   2.5,
		"max_trade_plans": 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Indicators.RSIOversold)
	assert.Equal(t, 2.5, cfg.Risk.MinRRRatio)
	assert.Equal(t, 4, cfg.Signals.MaxTradePlans)

	// Everything else stays at the preset value.
	base, err := Resolve("neutral", nil)
	require.NoError(t, err)
	assert.Equal(t, base.Indicators.RSIOverbought, cfg.Indicators.RSIOverbought)
	assert.Equal(t, base.Risk.StopATRSwing, cfg.Risk.StopATRSwing)
	assert.Equal(t, base.Signals.MaxSignalsReturned, cfg.Signals.MaxSignalsReturned)
}

func TestResolveLeavesPresetUntouched(t *testing.T) {
	_, err := Resolve("neutral", map[string]float64{"min_rr_ratio": 4.0})
	require.NoError(t, err)

	again, err := Resolve("neutral", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.5, again.Risk.MinRRRatio)
}

func TestResolveReportsAllOffendingKeys(t *testing.T) {
	_, err := Resolve("neutral", map[string]float64{
		"no_such_key":  1,
		"rsi_oversold": 400,
		"rsi_period":   14.5,
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidOverride))
	assert.Contains(t, err.Error(), "no_such_key")
	assert.Contains(t, err.Error(), "rsi_oversold")
	assert.Contains(t, err.Error(), "rsi_period")
}

func TestResolveDeterministic(t *testing.T) {
	overrides := map[string]float64{"rsi_oversold": 28, "adx_trending": 22}
	a, err := Resolve("risky", overrides)
	require.NoError(t, err)
	b, err := Resolve("risky", overrides)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "base", Fingerprint(nil))
	assert.Equal(t, "base", Fingerprint(map[string]float64{}))

	a := Fingerprint(map[string]float64{"rsi_oversold": 25, "min_rr_ratio": 2})
	b := Fingerprint(map[string]float64{"min_rr_ratio": 2, "rsi_oversold": 25})
	assert.Equal(t, a, b, "fingerprint must not depend on map order")

	c := Fingerprint(map[string]float64{"rsi_oversold": 26, "min_rr_ratio": 2})
	assert.NotEqual(t, a, c)
}

func TestContextFlattensResolvedConfig(t *testing.T) {
	ctx := NewContext(profilePreset(ProfileAverse))
	assert.Equal(t, 2.0, ctx.MinRRRatio())
	assert.Equal(t, 2, ctx.MaxTradePlans())
}
