package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

// dimensionOrder fixes the evaluation order so notes and scores come out
// identical run after run.
var dimensionOrder = []string{
	models.DimensionLiquidity,
	models.DimensionSolvency,
	models.DimensionOperational,
	models.DimensionMarket,
}

// RiskAssessor aggregates one period's ratio results, and optionally trend
// results, into four weighted dimension scores and an overall level. It is
// stateless; every call is a pure function of its inputs.
type RiskAssessor struct {
	cfg    config.RiskConfig
	logger *logrus.Logger
}

// NewRiskAssessor creates a risk assessor with the configured weights,
// benchmarks and trend penalty.
func NewRiskAssessor(cfg config.RiskConfig, logger *logrus.Logger) *RiskAssessor {
	return &RiskAssessor{cfg: cfg, logger: logger}
}

// Assess scores the four risk dimensions from the latest period's ratios
// and applies trend adjustments. Scores run 0-100 where higher means lower
// risk. trends may be nil when no multi-period data exists.
func (r *RiskAssessor) Assess(ratios map[string]models.RatioResult, trends []models.TrendResult) *models.RiskAssessment {
	assessment := &models.RiskAssessment{
		DimensionScores: make(map[string]decimal.Decimal, len(dimensionOrder)),
	}

	raw := make(map[string]float64, len(dimensionOrder))
	for _, dimension := range dimensionOrder {
		score := 0.0
		for _, metric := range r.cfg.Dimensions[dimension] {
			subScore, note := r.subScore(metric, ratios)
			score += subScore
			if note != "" {
				assessment.Notes = append(assessment.Notes, note)
			}
		}
		raw[dimension] = clampScore(score)
	}

	// Trend adjustments come after clamping and re-clamp afterwards; this
	// is the only place trend information reaches risk.
	for _, signal := range r.cfg.TrendSignals {
		trend := findTrend(trends, signal.Metric)
		if trend == nil || !trend.Sufficient || trend.Direction == models.TrendStable {
			continue
		}
		healthy := trend.Direction == models.TrendImproving
		if signal.LowerIsBetter {
			healthy = !healthy
		}
		adjustment := r.cfg.TrendPenalty
		if !healthy {
			adjustment = -adjustment
		}
		if _, ok := raw[signal.Dimension]; !ok {
			continue
		}
		raw[signal.Dimension] = clampScore(raw[signal.Dimension] + adjustment)
		assessment.Notes = append(assessment.Notes,
			fmt.Sprintf("%s trend on %s adjusted %s score by %+g",
				trend.Direction, signal.Metric, signal.Dimension, adjustment))
	}

	weightedSum := 0.0
	weightTotal := 0.0
	for _, dimension := range dimensionOrder {
		assessment.DimensionScores[dimension] = decimal.NewFromFloat(raw[dimension])
		weight := r.cfg.DimensionWeights[dimension]
		weightedSum += raw[dimension] * weight
		weightTotal += weight
	}

	overall := 0.0
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}
	assessment.OverallScore = decimal.NewFromFloat(overall)
	assessment.OverallLevel = riskLevel(overall)

	r.logger.WithFields(logrus.Fields{
		"overall_score": overall,
		"overall_level": assessment.OverallLevel,
	}).Debug("Risk assessment computed")

	return assessment
}

// subScore maps one ratio through its monotonic piecewise-linear scale into
// [0, weight]. A non-computable ratio contributes a neutral half-weight so
// missing data neither penalizes nor rewards, and that estimate is flagged
// in the audit note.
func (r *RiskAssessor) subScore(metric config.SubMetric, ratios map[string]models.RatioResult) (float64, string) {
	ratio, ok := ratios[metric.Ratio]
	if !ok || !ratio.Computable || ratio.Value == nil {
		return metric.Weight / 2,
			fmt.Sprintf("%s estimated due to missing data (neutral half-weight)", metric.Ratio)
	}

	value, _ := ratio.Value.Float64()
	if metric.LowerIsBetter {
		if value == 0 {
			// Zero is the optimum only where the ratio's interpretation
			// makes it one (no debt); otherwise a zero reading scores
			// nothing rather than dividing by it.
			if metric.ZeroIsBest {
				return metric.Weight, ""
			}
			return 0, ""
		}
		if value < 0 {
			return 0, ""
		}
		return metric.Weight * math.Min(1, metric.Benchmark/value), ""
	}

	if value <= 0 {
		return 0, ""
	}
	return metric.Weight * math.Min(1, value/metric.Benchmark), ""
}

func findTrend(trends []models.TrendResult, metric string) *models.TrendResult {
	for i := range trends {
		if trends[i].Metric == metric {
			return &trends[i]
		}
	}
	return nil
}

// clampScore bounds a dimension score to [0, 100].
func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// riskLevel derives the overall level from the same four-tier banding used
// for ratio interpretation.
func riskLevel(score float64) string {
	switch {
	case score >= 80:
		return models.RiskLevelLow
	case score >= 60:
		return models.RiskLevelModerate
	case score >= 40:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelVeryHigh
	}
}
