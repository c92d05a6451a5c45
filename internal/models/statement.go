package models

import (
	"github.com/shopspring/decimal"
)

// Item is a canonical financial statement line item. The set is closed and
// versioned: adding an item means updating the alias table and any ratio
// formulas that reference it.
type Item string

const (
	ItemRevenue            Item = "Revenue"
	ItemCostOfGoodsSold    Item = "CostOfGoodsSold"
	ItemGrossProfit        Item = "GrossProfit"
	ItemOperatingIncome    Item = "OperatingIncome"
	ItemNetIncome          Item = "NetIncome"
	ItemInterestExpense    Item = "InterestExpense"
	ItemEBITDA             Item = "EBITDA"
	ItemCash               Item = "Cash"
	ItemAccountsReceivable Item = "AccountsReceivable"
	ItemInventory          Item = "Inventory"
	ItemCurrentAssets      Item = "CurrentAssets"
	ItemTotalAssets        Item = "TotalAssets"
	ItemCurrentLiabilities Item = "CurrentLiabilities"
	ItemTotalLiabilities   Item = "TotalLiabilities"
	ItemTotalDebt          Item = "TotalDebt"
	ItemShareholdersEquity Item = "ShareholdersEquity"
	ItemOperatingCashFlow  Item = "OperatingCashFlow"
	ItemSharesOutstanding  Item = "SharesOutstanding"
)

// AllItems returns the canonical item set in a stable order.
func AllItems() []Item {
	return []Item{
		ItemRevenue,
		ItemCostOfGoodsSold,
		ItemGrossProfit,
		ItemOperatingIncome,
		ItemNetIncome,
		ItemInterestExpense,
		ItemEBITDA,
		ItemCash,
		ItemAccountsReceivable,
		ItemInventory,
		ItemCurrentAssets,
		ItemTotalAssets,
		ItemCurrentLiabilities,
		ItemTotalLiabilities,
		ItemTotalDebt,
		ItemShareholdersEquity,
		ItemOperatingCashFlow,
		ItemSharesOutstanding,
	}
}

// RawFact is one source's reported figure for one line item and period.
// It is produced by an external collector and never modified by the engine.
// Value arrives as the collector's raw string; numeric coercion happens
// during normalization so that unparsable figures can be reported instead
// of silently dropped.
type RawFact struct {
	SourceID  string `json:"source_id"`
	RawLabel  string `json:"raw_label"`
	PeriodEnd string `json:"period_end"` // ISO date, e.g. "2023-12-31"
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
}

// NormalizedValue is the reconciled figure for one canonical item in one
// period, with the cross-source audit trail.
type NormalizedValue struct {
	Value        decimal.Decimal            `json:"value"`
	Sources      []string                   `json:"sources"`
	SourceValues map[string]decimal.Decimal `json:"source_values,omitempty"`
	Agreement    bool                       `json:"agreement"`
}

// NormalizedStatement maps (canonical item, period) to reconciled values.
// An item a period's sources never reported is absent from the map; absence
// and a true zero are different things and are never conflated.
type NormalizedStatement struct {
	Ticker  string                           `json:"ticker"`
	Periods []string                         `json:"periods"` // ascending
	Items   map[string]map[Item]NormalizedValue `json:"items"` // period -> item -> value
}

// LatestPeriod returns the most recent period end date, or "" when the
// statement is empty.
func (s *NormalizedStatement) LatestPeriod() string {
	if len(s.Periods) == 0 {
		return ""
	}
	return s.Periods[len(s.Periods)-1]
}

// Lookup returns the normalized value for an item in a period.
func (s *NormalizedStatement) Lookup(period string, item Item) (NormalizedValue, bool) {
	values, ok := s.Items[period]
	if !ok {
		return NormalizedValue{}, false
	}
	v, ok := values[item]
	return v, ok
}
