package rank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
)

func testContext(t *testing.T) *config.Context {
	t.Helper()
	cfg, err := config.Resolve("neutral", nil)
	require.NoError(t, err)
	return config.NewContext(cfg)
}

func sampleSignals() []domain.Signal {
	return []domain.Signal{
		{Name: "GOLDEN_CROSS", Strength: domain.StrongBullish, Category: domain.CategoryMACross},
		{Name: "RSI_OVERSOLD", Strength: domain.Bullish, Category: domain.CategoryRSI},
		{Name: "VOLUME_DRY_UP", Strength: domain.Neutral, Category: domain.CategoryVolume},
		{Name: "ABOVE_LONG_TERM_TREND", Strength: domain.Notable, Category: domain.CategoryMATrend},
	}
}

func TestRuleBasedScoring(t *testing.T) {
	r := NewRuleBased(testContext(t))
	res, err := r.Rank(context.Background(), Snapshot{Symbol: "TEST"}, sampleSignals())
	require.NoError(t, err)
	require.Len(t, res.Signals, 4)

	// Strength base plus category bonus: STRONG (75) + MA_CROSS (10).
	assert.Equal(t, "GOLDEN_CROSS", res.Signals[0].Name)
	assert.Equal(t, 85.0, res.Signals[0].Score)

	// Sorted descending, every score in range, rationale populated.
	for i, s := range res.Signals {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 100.0)
		assert.NotEmpty(t, s.Rationale)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Signals[i-1].Score, s.Score)
		}
	}
	assert.False(t, res.AIPowered)
}

func TestRuleBasedTieBreakByOriginalIndex(t *testing.T) {
	signals := []domain.Signal{
		{Name: "FIRST", Strength: domain.Bullish, Category: domain.CategoryRSI},
		{Name: "SECOND", Strength: domain.Bullish, Category: domain.CategoryRSI},
		{Name: "THIRD", Strength: domain.Bullish, Category: domain.CategoryRSI},
	}
	r := NewRuleBased(testContext(t))
	res, err := r.Rank(context.Background(), Snapshot{}, signals)
	require.NoError(t, err)

	assert.Equal(t, []string{"FIRST", "SECOND", "THIRD"},
		[]string{res.Signals[0].Name, res.Signals[1].Name, res.Signals[2].Name})
}

func TestRuleBasedDoesNotMutateInput(t *testing.T) {
	signals := sampleSignals()
	r := NewRuleBased(testContext(t))
	_, err := r.Rank(context.Background(), Snapshot{}, signals)
	require.NoError(t, err)

	for _, s := range signals {
		assert.Zero(t, s.Score, "input slice must stay unscored")
	}
}

func TestFallbackRecoversRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rules := NewRuleBased(testContext(t))
	remote := NewRemote(RemoteConfig{Endpoint: server.URL}, rules)
	f := NewFallback(remote, rules)

	res, err := f.Rank(context.Background(), Snapshot{Symbol: "TEST"}, sampleSignals())
	require.NoError(t, err, "fallback must never surface ranker failures")
	assert.False(t, res.AIPowered)
	assert.Len(t, res.Signals, 4)
}

func TestFallbackMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	rules := NewRuleBased(testContext(t))
	f := NewFallback(NewRemote(RemoteConfig{Endpoint: server.URL}, rules), rules)

	res, err := f.Rank(context.Background(), Snapshot{Symbol: "TEST"}, sampleSignals())
	require.NoError(t, err)
	assert.False(t, res.AIPowered)
}

func TestRemoteVerdictApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"score":80,"outlook":"BULLISH","action":"BUY","confidence":"HIGH","summary":"constructive setup"}`))
	}))
	defer server.Close()

	rules := NewRuleBased(testContext(t))
	f := NewFallback(NewRemote(RemoteConfig{Endpoint: server.URL}, rules), rules)

	res, err := f.Rank(context.Background(), Snapshot{Symbol: "TEST"}, sampleSignals())
	require.NoError(t, err)
	assert.True(t, res.AIPowered)
	require.NotNil(t, res.Verdict)
	assert.Equal(t, 80.0, res.Verdict.Score)
	assert.Equal(t, "BUY", res.Verdict.Action)
	for _, s := range res.Signals {
		assert.Equal(t, "constructive setup", s.Rationale)
	}
}

func TestRemoteScoreOutOfRangeFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score":450,"outlook":"BULLISH","action":"BUY","confidence":"HIGH","summary":"x"}`))
	}))
	defer server.Close()

	rules := NewRuleBased(testContext(t))
	f := NewFallback(NewRemote(RemoteConfig{Endpoint: server.URL}, rules), rules)

	res, err := f.Rank(context.Background(), Snapshot{Symbol: "TEST"}, sampleSignals())
	require.NoError(t, err)
	assert.False(t, res.AIPowered)
}
