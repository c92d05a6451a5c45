package models

import (
	"time"
)

// Warning codes for non-fatal data-quality findings.
const (
	WarnUnparsableValue     = "unparsable_value"
	WarnSourceDisagreement  = "source_disagreement"
	WarnInsufficientPeriods = "insufficient_periods"
)

// Warning records a non-fatal data-quality finding. Warnings are surfaced in
// the analysis result so the reporting layer can show them; they never abort
// a run.
type Warning struct {
	Code    string `json:"code"`
	Item    string `json:"item,omitempty"`
	Period  string `json:"period,omitempty"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// AnalysisRequest is the input contract from the data-acquisition layer: the
// collected raw facts for one company plus an optional market-data record
// for valuation ratios.
type AnalysisRequest struct {
	Ticker     string      `json:"ticker"`
	Facts      []RawFact   `json:"facts"`
	MarketData *MarketData `json:"market_data,omitempty"`
}

// Analysis is the output contract to the reporting layer: everything the
// renderer needs, with no numeric value left for it to re-derive. Ratio maps
// include non-computable entries; they are never omitted.
type Analysis struct {
	ID           string                            `json:"id"`
	Ticker       string                            `json:"ticker"`
	GeneratedAt  time.Time                         `json:"generated_at"`
	Statement    *NormalizedStatement              `json:"statement"`
	Ratios       map[string]map[string]RatioResult `json:"ratios"` // period -> ratio name -> result
	LatestPeriod string                            `json:"latest_period"`
	Trends       []TrendResult                     `json:"trends"`
	Risk         *RiskAssessment                   `json:"risk"`
	Warnings     []Warning                         `json:"warnings,omitempty"`
}
