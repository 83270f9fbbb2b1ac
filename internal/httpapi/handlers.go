package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/portfolio"
	"github.com/marketlens/marketlens/internal/scan"
)

// analyzeRequest is the shared request body for per-symbol operations.
type analyzeRequest struct {
	Symbol    string             `json:"symbol"`
	Period    string             `json:"period,omitempty"`
	Profile   string             `json:"risk_profile,omitempty"`
	Overrides map[string]float64 `json:"config_overrides,omitempty"`
	UseAI     bool               `json:"use_ai,omitempty"`
	Timeframe string             `json:"timeframe,omitempty"`
}

func (r analyzeRequest) toCore() analyze.Request {
	return analyze.Request{
		Symbol:        r.Symbol,
		Period:        domain.Period(r.Period),
		Profile:       r.Profile,
		Overrides:     r.Overrides,
		UseAI:         r.UseAI,
		TimeframeHint: domain.Timeframe(r.Timeframe),
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, string(domain.ErrInvalidSymbol), "symbol is required")
		return
	}
	analysis, err := s.analyzer.Analyze(r.Context(), req.toCore())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, string(domain.ErrInvalidSymbol), "symbol is required")
		return
	}
	assessment, err := s.analyzer.Plan(r.Context(), req.toCore())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type compareRequest struct {
	Symbols []string `json:"symbols"`
	Metric  string   `json:"metric,omitempty"`
	Period  string   `json:"period,omitempty"`
	Profile string   `json:"risk_profile,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Symbols) < 2 {
		writeError(w, http.StatusBadRequest, string(domain.ErrInvalidSymbol), "compare needs at least two symbols")
		return
	}
	result, err := s.scanner.Compare(r.Context(), req.Symbols, req.Metric, scan.Options{
		Period:  domain.Period(req.Period),
		Profile: req.Profile,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type screenRequest struct {
	Universe string        `json:"universe,omitempty"`
	Symbols  []string      `json:"symbols,omitempty"`
	Criteria scan.Criteria `json:"criteria"`
	Period   string        `json:"period,omitempty"`
	Profile  string        `json:"risk_profile,omitempty"`
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Universe == "" && len(req.Symbols) == 0 {
		writeError(w, http.StatusBadRequest, string(domain.ErrUnknownUniverse), "universe or symbols required")
		return
	}
	result, err := s.scanner.Screen(r.Context(), req.Universe, req.Symbols, req.Criteria, scan.Options{
		Period:  domain.Period(req.Period),
		Profile: req.Profile,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type scanRequest struct {
	Universe   string             `json:"universe"`
	MaxResults int                `json:"max_results,omitempty"`
	Period     string             `json:"period,omitempty"`
	Profile    string             `json:"risk_profile,omitempty"`
	Overrides  map[string]float64 `json:"config_overrides,omitempty"`
	UseAI      bool               `json:"use_ai,omitempty"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.scanner.ScanUniverse(r.Context(), scan.Options{
		Universe:   req.Universe,
		MaxResults: req.MaxResults,
		Period:     domain.Period(req.Period),
		Profile:    req.Profile,
		Overrides:  req.Overrides,
		UseAI:      req.UseAI,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type portfolioRequest struct {
	Positions []portfolio.Position `json:"positions"`
	Period    string               `json:"period,omitempty"`
	Profile   string               `json:"risk_profile,omitempty"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Positions) == 0 {
		writeError(w, http.StatusBadRequest, string(domain.ErrInvalidSymbol), "positions required")
		return
	}
	report, err := s.assessor.Assess(r.Context(), req.Positions, domain.Period(req.Period), req.Profile)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type briefRequest struct {
	Watchlist []string `json:"watchlist,omitempty"`
	Region    string   `json:"market_region,omitempty"`
	Period    string   `json:"period,omitempty"`
	Profile   string   `json:"risk_profile,omitempty"`
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	var req briefRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.composer.Compose(r.Context(), req.Watchlist, req.Region, domain.Period(req.Period), req.Profile)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "MALFORMED_REQUEST", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeDomainError maps categorical errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		writeError(w, http.StatusInternalServerError, string(domain.ErrCalculation), err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domain.ErrInvalidSymbol, domain.ErrInvalidPeriod, domain.ErrInvalidOverride,
		domain.ErrUnknownProfile, domain.ErrUnknownUniverse:
		status = http.StatusBadRequest
	case domain.ErrInsufficientData:
		status = http.StatusUnprocessableEntity
	case domain.ErrRateLimited:
		status = http.StatusTooManyRequests
	case domain.ErrDataFetch, domain.ErrRanker:
		status = http.StatusBadGateway
	}
	writeError(w, status, string(de.Code), de.Message)
}
