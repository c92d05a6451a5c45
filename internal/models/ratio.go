package models

import (
	"github.com/shopspring/decimal"
)

// RatioCategory groups ratios for reporting.
type RatioCategory string

const (
	CategoryLiquidity     RatioCategory = "liquidity"
	CategoryProfitability RatioCategory = "profitability"
	CategoryLeverage      RatioCategory = "leverage"
	CategoryEfficiency    RatioCategory = "efficiency"
	CategoryValuation     RatioCategory = "valuation"
)

// Ratio names. These are the keys of the ratio result map and of the
// interpretation band and risk sub-metric configuration.
const (
	RatioCurrentRatio        = "current_ratio"
	RatioQuickRatio          = "quick_ratio"
	RatioCashRatio           = "cash_ratio"
	RatioGrossMargin         = "gross_margin"
	RatioOperatingMargin     = "operating_margin"
	RatioNetMargin           = "net_margin"
	RatioEBITDAMargin        = "ebitda_margin"
	RatioROE                 = "roe"
	RatioROA                 = "roa"
	RatioDebtToEquity        = "debt_to_equity"
	RatioDebtToAssets        = "debt_to_assets"
	RatioInterestCoverage    = "interest_coverage"
	RatioDebtServiceCoverage = "debt_service_coverage"
	RatioAssetTurnover       = "asset_turnover"
	RatioInventoryTurnover   = "inventory_turnover"
	RatioReceivablesTurnover = "receivables_turnover"
	RatioPriceToEarnings     = "pe_ratio"
	RatioPriceToBook         = "pb_ratio"
)

// RatioResult is the outcome of one ratio formula for one period. A ratio
// whose preconditions are unmet carries Computable=false and a nil Value;
// "cannot be determined" is a first-class outcome, never coerced to zero.
type RatioResult struct {
	Name       string           `json:"name"`
	Category   RatioCategory    `json:"category"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	Computable bool             `json:"computable"`
	Band       string           `json:"interpretation_band,omitempty"`
}

// MarketData is the externally supplied current market record required by
// valuation ratios. The engine never fetches it.
type MarketData struct {
	Price             decimal.Decimal `json:"price"`
	SharesOutstanding decimal.Decimal `json:"shares_outstanding"`
	MarketCap         decimal.Decimal `json:"market_cap,omitempty"`
}
