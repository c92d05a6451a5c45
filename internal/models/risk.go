package models

import (
	"github.com/shopspring/decimal"
)

// Risk dimensions. Scores are on a 0-100 scale where higher means lower risk.
const (
	DimensionLiquidity   = "liquidity"
	DimensionSolvency    = "solvency"
	DimensionOperational = "operational"
	DimensionMarket      = "market"
)

// Overall risk levels derived from the overall score.
const (
	RiskLevelLow      = "low"
	RiskLevelModerate = "moderate"
	RiskLevelHigh     = "high"
	RiskLevelVeryHigh = "very_high"
)

// RiskAssessment is the derived, stateless risk picture for one analysis
// run. It is recomputed every run and never persisted as a source of truth.
// Notes is the audit trail: each sub-score that fell back to its neutral
// default because of missing data, and each trend adjustment, is recorded
// there.
type RiskAssessment struct {
	DimensionScores map[string]decimal.Decimal `json:"dimension_scores"`
	OverallScore    decimal.Decimal            `json:"overall_score"`
	OverallLevel    string                     `json:"overall_level"`
	Notes           []string                   `json:"notes,omitempty"`
}
