package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/indicators"
	"github.com/marketlens/marketlens/internal/metrics"
)

// Position is one portfolio holding. EntryPrice is informational; the
// snapshot assessment prices the position at the current close.
type Position struct {
	Symbol     string  `json:"symbol"`
	Shares     float64 `json:"shares"`
	EntryPrice float64 `json:"entry_price,omitempty"`
}

// RiskLevel buckets a position by recent realized volatility.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Stop distance ranges per bucket, percent of price.
var stopRanges = map[RiskLevel][2]float64{
	RiskLow:      {2.0, 3.0},
	RiskModerate: {3.0, 5.0},
	RiskHigh:     {5.0, 8.0},
}

// Annualized realized-vol bounds separating the buckets.
const (
	volLowMax      = 20.0
	volModerateMax = 40.0
	volScaleCeil   = 80.0 // vol at which the stop pins to the bucket top
)

// PositionRisk is the per-position slice of the report.
type PositionRisk struct {
	Symbol      string    `json:"symbol"`
	Sector      string    `json:"sector"`
	Shares      float64   `json:"shares"`
	Price       float64   `json:"price"`
	Value       float64   `json:"value"`
	RiskLevel   RiskLevel `json:"risk_level"`
	StopPct     float64   `json:"stop_pct"`
	Stop        float64   `json:"stop"`
	MaxLoss     float64   `json:"max_loss"`
	RealizedVol float64   `json:"realized_vol,omitempty"`
}

// SectorRisk aggregates the positions of one GICS sector.
type SectorRisk struct {
	Sector        string  `json:"sector"`
	Value         float64 `json:"value"`
	PctOfTotal    float64 `json:"pct_of_total"`
	Positions     int     `json:"positions"`
	MaxLoss       float64 `json:"max_loss"`
	LowCount      int     `json:"low_count"`
	ModerateCount int     `json:"moderate_count"`
	HighCount     int     `json:"high_count"`
}

// RiskReport is the portfolio-level output.
type RiskReport struct {
	Positions      []PositionRisk       `json:"positions"`
	Sectors        []SectorRisk         `json:"sectors"`
	TotalValue     float64              `json:"total_value"`
	TotalMaxLoss   float64              `json:"total_max_loss"`
	OverallRiskPct float64              `json:"overall_risk_pct"`
	Errors         []domain.SymbolError `json:"errors,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
}

// Assessor prices portfolio risk via the shared analyzer.
type Assessor struct {
	analyzer *analyze.Analyzer
	workers  int
}

// NewAssessor wires an assessor; workers <= 0 uses 10.
func NewAssessor(analyzer *analyze.Analyzer, workers int) *Assessor {
	if workers <= 0 {
		workers = 10
	}
	return &Assessor{analyzer: analyzer, workers: workers}
}

// Assess runs the core for every position, derives a volatility-scaled
// stop per position, and buckets the dollar risk by sector. Failed
// positions are recorded and excluded from the aggregates.
func (a *Assessor) Assess(ctx context.Context, positions []Position, period domain.Period, profile string) (RiskReport, error) {
	period, err := domain.ParsePeriod(string(period))
	if err != nil {
		return RiskReport{}, err
	}
	report := RiskReport{Timestamp: time.Now().UTC()}
	if len(positions) == 0 {
		return report, nil
	}

	type outcome struct {
		pos      Position
		analysis domain.Analysis
		err      error
	}

	jobs := make(chan Position)
	results := make(chan outcome, len(positions))
	workers := a.workers
	if workers > len(positions) {
		workers = len(positions)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				analysis, err := a.analyzer.Analyze(ctx, analyze.Request{
					Symbol:  pos.Symbol,
					Period:  period,
					Profile: profile,
				})
				results <- outcome{pos: pos, analysis: analysis, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, pos := range positions {
			select {
			case jobs <- pos:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()
	close(results)

	sectors := make(map[string]*SectorRisk)
	for out := range results {
		if out.err != nil {
			code := domain.CodeOf(out.err)
			metrics.ScanSymbolErrors.WithLabelValues(string(code)).Inc()
			report.Errors = append(report.Errors, domain.SymbolError{
				Symbol: out.pos.Symbol, Code: code, Message: out.err.Error(),
			})
			continue
		}

		pr := assessPosition(out.pos, out.analysis)
		report.Positions = append(report.Positions, pr)
		report.TotalValue += pr.Value
		report.TotalMaxLoss += pr.MaxLoss

		bucket, ok := sectors[pr.Sector]
		if !ok {
			bucket = &SectorRisk{Sector: pr.Sector}
			sectors[pr.Sector] = bucket
		}
		bucket.Value += pr.Value
		bucket.MaxLoss += pr.MaxLoss
		bucket.Positions++
		switch pr.RiskLevel {
		case RiskLow:
			bucket.LowCount++
		case RiskModerate:
			bucket.ModerateCount++
		case RiskHigh:
			bucket.HighCount++
		}
	}

	for _, bucket := range sectors {
		if report.TotalValue > 0 {
			bucket.PctOfTotal = bucket.Value / report.TotalValue * 100
		}
		report.Sectors = append(report.Sectors, *bucket)
	}
	sort.Slice(report.Sectors, func(i, j int) bool {
		return report.Sectors[i].Value > report.Sectors[j].Value
	})
	sort.Slice(report.Positions, func(i, j int) bool {
		return report.Positions[i].Value > report.Positions[j].Value
	})

	if report.TotalValue > 0 {
		report.OverallRiskPct = report.TotalMaxLoss / report.TotalValue * 100
	}
	log.Info().Int("positions", len(report.Positions)).Int("sectors", len(report.Sectors)).
		Float64("overall_risk_pct", report.OverallRiskPct).Msg("portfolio risk assessed")
	return report, nil
}

// assessPosition derives the stop and dollar risk for one holding. The
// stop percent sits inside the bucket's range, pushed toward the top of
// the range as realized volatility climbs.
func assessPosition(pos Position, analysis domain.Analysis) PositionRisk {
	price := analysis.Price
	vol, hasVol := analysis.Indicators[indicators.RealizedVol]

	level := classifyVol(vol, hasVol)
	stopPct := scaleStopPct(level, vol)

	stop := price * (1 - stopPct/100)
	maxLoss := pos.Shares * (price - stop)

	return PositionRisk{
		Symbol:      strings.ToUpper(pos.Symbol),
		Sector:      SectorOf(strings.ToUpper(pos.Symbol)),
		Shares:      pos.Shares,
		Price:       price,
		Value:       pos.Shares * price,
		RiskLevel:   level,
		StopPct:     stopPct,
		Stop:        stop,
		MaxLoss:     maxLoss,
		RealizedVol: vol,
	}
}

// classifyVol buckets annualized realized volatility; missing vol is
// treated as moderate.
func classifyVol(vol float64, defined bool) RiskLevel {
	switch {
	case !defined:
		return RiskModerate
	case vol < volLowMax:
		return RiskLow
	case vol < volModerateMax:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// scaleStopPct interpolates within the bucket's stop range using the
// position of vol inside the bucket's volatility band.
func scaleStopPct(level RiskLevel, vol float64) float64 {
	r := stopRanges[level]

	var lo, hi float64
	switch level {
	case RiskLow:
		lo, hi = 0, volLowMax
	case RiskModerate:
		lo, hi = volLowMax, volModerateMax
	default:
		lo, hi = volModerateMax, volScaleCeil
	}

	frac := 0.5
	if hi > lo {
		frac = (vol - lo) / (hi - lo)
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return r[0] + frac*(r[1]-r[0])
}
