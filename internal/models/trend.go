package models

import (
	"github.com/shopspring/decimal"
)

// Trend directions. The tie-break is explicit: a change of exactly zero is
// stable, any positive change is improving, any negative change declining.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// SeriesPoint is one period's observation for a metric. Periods with a
// missing value are excluded from the series before analysis; the remaining
// points are treated as evenly weighted regardless of the resulting spacing.
type SeriesPoint struct {
	Period string          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

// TrendResult describes the multi-period behaviour of one metric (a
// canonical item or a ratio). Sufficient=false is the explicit
// "insufficient data" outcome for series with fewer than two points.
// ChangePct is nil when the earliest value is zero, mirroring the ratio
// engine's non-computable policy.
type TrendResult struct {
	Metric     string           `json:"metric"`
	Direction  string           `json:"direction,omitempty"`
	ChangePct  *decimal.Decimal `json:"change_pct,omitempty"`
	Volatility *decimal.Decimal `json:"volatility,omitempty"`
	Periods    int              `json:"periods"`
	Sufficient bool             `json:"sufficient"`
}
