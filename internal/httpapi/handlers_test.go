package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/brief"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/portfolio"
	"github.com/marketlens/marketlens/internal/scan"
)

// staticProvider serves the same gently trending series for any symbol.
type staticProvider struct{}

func (staticProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, 120)
	c := 100.0
	for i := range bars {
		c += 0.3
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.998,
			High:      c * 1.008,
			Low:       c * 0.992,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return domain.BarSeries{Symbol: symbol, Period: period, Bars: bars}, nil
}

func newTestServer() *Server {
	analyzer := analyze.New(staticProvider{})
	scanner := scan.NewScanner(analyzer, nil)
	assessor := portfolio.NewAssessor(analyzer, 4)
	composer := brief.NewComposer(analyzer, 4)
	return NewServer(Config{}, analyzer, scanner, assessor, composer)
}

func post(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var envelope map[string]errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope["error"]
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/analyze", map[string]interface{}{
		"symbol": "AAPL",
		"period": "1y",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var analysis domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "AAPL", analysis.Symbol)
	assert.NotEmpty(t, analysis.Signals)
	assert.NotEmpty(t, analysis.Indicators)
}

func TestAnalyzeRejectsMissingSymbol(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/analyze", map[string]interface{}{"period": "1y"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrInvalidSymbol), decodeError(t, rec).Code)
}

func TestAnalyzeRejectsUnknownField(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/analyze", map[string]interface{}{
		"symbol":  "AAPL",
		"perriod": "1y",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_REQUEST", decodeError(t, rec).Code)
}

func TestAnalyzeInvalidPeriodMapsTo400(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/analyze", map[string]interface{}{
		"symbol": "AAPL",
		"period": "fortnight",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrInvalidPeriod), decodeError(t, rec).Code)
}

func TestAnalyzeUnknownProfileMapsTo400(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/analyze", map[string]interface{}{
		"symbol":       "AAPL",
		"risk_profile": "yolo",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrUnknownProfile), decodeError(t, rec).Code)
}

func TestPlanEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/plan", map[string]interface{}{
		"symbol": "MSFT",
		"period": "1y",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var assessment domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	assert.Equal(t, "MSFT", assessment.Symbol)
	hasPlans := len(assessment.Plans) > 0
	hasSuppressions := len(assessment.Suppressions) > 0
	assert.NotEqual(t, hasPlans, hasSuppressions)
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/compare", map[string]interface{}{
		"symbols": []string{"AAPL", "MSFT"},
		"metric":  "rsi",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result scan.CompareResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "rsi", result.Metric)
	assert.Len(t, result.Rows, 2)
	require.NotNil(t, result.Winner)
}

func TestCompareRejectsSingleSymbol(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/compare", map[string]interface{}{
		"symbols": []string{"AAPL"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenEndpointRequiresTarget(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/screen", map[string]interface{}{
		"criteria": map[string]interface{}{"min_bullish": 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrUnknownUniverse), decodeError(t, rec).Code)
}

func TestScreenEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/screen", map[string]interface{}{
		"symbols":  []string{"AAPL", "MSFT"},
		"criteria": map[string]interface{}{"min_bullish": 1},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result scan.ScreenResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalScanned)
}

func TestScanEndpointUnknownUniverseMapsTo400(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/scan", map[string]interface{}{"universe": "ftse"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrUnknownUniverse), decodeError(t, rec).Code)
}

func TestScanInvalidPeriodMapsTo400(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/scan", map[string]interface{}{
		"universe": "dow30",
		"period":   "fortnight",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.ErrInvalidPeriod), decodeError(t, rec).Code)
}

func TestPortfolioEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/portfolio", map[string]interface{}{
		"positions": []map[string]interface{}{
			{"symbol": "AAPL", "shares": 10},
			{"symbol": "XOM", "shares": 5},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report portfolio.RiskReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Positions, 2)
	assert.Greater(t, report.TotalValue, 0.0)
}

func TestPortfolioRequiresPositions(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/portfolio", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBriefEndpoint(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/v1/brief", map[string]interface{}{
		"watchlist":     []string{"AAPL", "MSFT"},
		"market_region": "us",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var b brief.Brief
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, "us", b.Region)
	assert.NotEmpty(t, b.Indices)
	assert.Len(t, b.Watchlist, 2)
}

func TestNotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code   domain.ErrorCode
		status int
	}{
		{domain.ErrInvalidSymbol, http.StatusBadRequest},
		{domain.ErrInvalidPeriod, http.StatusBadRequest},
		{domain.ErrInvalidOverride, http.StatusBadRequest},
		{domain.ErrUnknownProfile, http.StatusBadRequest},
		{domain.ErrUnknownUniverse, http.StatusBadRequest},
		{domain.ErrInsufficientData, http.StatusUnprocessableEntity},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrDataFetch, http.StatusBadGateway},
		{domain.ErrRanker, http.StatusBadGateway},
		{domain.ErrCalculation, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, domain.NewError(tc.code, "boom"))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, string(tc.code), decodeError(t, rec).Code)
		})
	}
}
