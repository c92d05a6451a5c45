package services

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/finsightlab/finsight-go/internal/models"
)

// TrendAnalyzer computes growth, direction and volatility for one metric's
// ordered multi-period series. It never extrapolates or interpolates:
// callers exclude periods with missing values entirely, and the remaining
// points are treated as evenly weighted regardless of the resulting
// irregular spacing.
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a trend analyzer.
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// Analyze evaluates a series ordered from earliest to latest period. A
// series with fewer than two points yields an explicit insufficient-data
// result, not an error.
func (a *TrendAnalyzer) Analyze(metric string, series []models.SeriesPoint) models.TrendResult {
	result := models.TrendResult{
		Metric:  metric,
		Periods: len(series),
	}
	if len(series) < 2 {
		return result
	}
	result.Sufficient = true

	earliest := series[0].Value
	latest := series[len(series)-1].Value

	// Direction follows the sign of the change; a change of exactly zero is
	// stable. The sign is well defined even when the relative change is not
	// (earliest exactly zero).
	switch latest.Cmp(earliest) {
	case 1:
		result.Direction = models.TrendImproving
	case -1:
		result.Direction = models.TrendDeclining
	default:
		result.Direction = models.TrendStable
	}

	// Relative change is undefined against a zero base and stays nil then,
	// mirroring the ratio engine's non-computable policy.
	if !earliest.IsZero() {
		change := latest.Sub(earliest).Div(earliest.Abs())
		result.ChangePct = &change
	}

	volatility := decimal.NewFromFloat(sampleStdDev(series))
	result.Volatility = &volatility

	return result
}

// sampleStdDev is the sample standard deviation (n-1 denominator) of the
// series values.
func sampleStdDev(series []models.SeriesPoint) float64 {
	n := float64(len(series))
	mean := 0.0
	for _, p := range series {
		v, _ := p.Value.Float64()
		mean += v
	}
	mean /= n

	sumSquares := 0.0
	for _, p := range series {
		v, _ := p.Value.Float64()
		sumSquares += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSquares / (n - 1))
}
