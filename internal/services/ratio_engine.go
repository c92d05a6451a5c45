package services

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

var two = decimal.NewFromInt(2)

// RatioEngine computes the full ratio catalogue for one period of a
// normalized statement. Every catalogue entry appears in the output map;
// a ratio whose preconditions fail is returned as non-computable rather
// than omitted or zeroed. Values are stored unrounded; presentation
// rounding belongs to the report renderer.
type RatioEngine struct {
	cfg    config.RatiosConfig
	logger *logrus.Logger
}

// NewRatioEngine creates a ratio engine with the configured interpretation
// bands.
func NewRatioEngine(cfg config.RatiosConfig, logger *logrus.Logger) *RatioEngine {
	return &RatioEngine{cfg: cfg, logger: logger}
}

// Calculate derives all ratios from one period's items. prev carries the
// prior period's items for the turnover ratios' average balances and is nil
// when only one period exists; market is the optional externally supplied
// record required by valuation ratios.
func (e *RatioEngine) Calculate(
	items map[models.Item]models.NormalizedValue,
	prev map[models.Item]models.NormalizedValue,
	market *models.MarketData,
) map[string]models.RatioResult {
	results := make(map[string]models.RatioResult)
	put := func(r models.RatioResult) { results[r.Name] = r }

	// Liquidity
	ca := operandOf(items, models.ItemCurrentAssets)
	cl := operandOf(items, models.ItemCurrentLiabilities)
	cash := operandOf(items, models.ItemCash)
	inventory := operandOf(items, models.ItemInventory)

	put(e.divide(models.RatioCurrentRatio, models.CategoryLiquidity, ca, cl))

	// Quick ratio treats absent inventory as zero; this is the catalogue's
	// single documented exception to the absent-is-not-zero rule.
	quickAssets := operand{}
	if ca.ok {
		quickAssets = operand{value: ca.value, ok: true}
		if inventory.ok {
			quickAssets.value = ca.value.Sub(inventory.value)
		}
	}
	put(e.divide(models.RatioQuickRatio, models.CategoryLiquidity, quickAssets, cl))

	put(e.divide(models.RatioCashRatio, models.CategoryLiquidity, cash, cl))

	// Profitability: margins require strictly positive revenue.
	revenue := operandOf(items, models.ItemRevenue)
	posRevenue := requirePositive(revenue)
	put(e.divide(models.RatioGrossMargin, models.CategoryProfitability,
		operandOf(items, models.ItemGrossProfit), posRevenue))
	put(e.divide(models.RatioOperatingMargin, models.CategoryProfitability,
		operandOf(items, models.ItemOperatingIncome), posRevenue))
	put(e.divide(models.RatioNetMargin, models.CategoryProfitability,
		operandOf(items, models.ItemNetIncome), posRevenue))
	put(e.divide(models.RatioEBITDAMargin, models.CategoryProfitability,
		operandOf(items, models.ItemEBITDA), posRevenue))

	netIncome := operandOf(items, models.ItemNetIncome)
	equity := operandOf(items, models.ItemShareholdersEquity)
	totalAssets := operandOf(items, models.ItemTotalAssets)
	put(e.divide(models.RatioROE, models.CategoryProfitability, netIncome, requirePositive(equity)))
	put(e.divide(models.RatioROA, models.CategoryProfitability, netIncome, requirePositive(totalAssets)))

	// Leverage
	totalLiabilities := operandOf(items, models.ItemTotalLiabilities)
	put(e.divide(models.RatioDebtToEquity, models.CategoryLeverage, totalLiabilities, requirePositive(equity)))
	put(e.divide(models.RatioDebtToAssets, models.CategoryLeverage, totalLiabilities, totalAssets))

	// Interest coverage requires a reported, non-zero interest expense; an
	// absent expense and a zero expense are both non-computable, but for
	// different reasons and neither becomes an infinite coverage.
	put(e.divide(models.RatioInterestCoverage, models.CategoryLeverage,
		operandOf(items, models.ItemOperatingIncome),
		operandOf(items, models.ItemInterestExpense)))

	put(e.divide(models.RatioDebtServiceCoverage, models.CategoryLeverage,
		operandOf(items, models.ItemOperatingCashFlow),
		operandOf(items, models.ItemTotalDebt)))

	// Efficiency: turnover ratios divide by a two-period average balance,
	// so a single-period input yields non-computable entries.
	put(e.divide(models.RatioAssetTurnover, models.CategoryEfficiency,
		revenue, averageBalance(items, prev, models.ItemTotalAssets)))
	put(e.divide(models.RatioInventoryTurnover, models.CategoryEfficiency,
		operandOf(items, models.ItemCostOfGoodsSold),
		averageBalance(items, prev, models.ItemInventory)))
	put(e.divide(models.RatioReceivablesTurnover, models.CategoryEfficiency,
		revenue, averageBalance(items, prev, models.ItemAccountsReceivable)))

	// Valuation: both ratios need the external market record.
	put(e.priceToEarnings(netIncome, market))
	put(e.priceToBook(equity, market))

	return results
}

// operand is a value that may be absent. Absence flows through every
// formula as non-computable instead of being conflated with zero.
type operand struct {
	value decimal.Decimal
	ok    bool
}

func operandOf(items map[models.Item]models.NormalizedValue, item models.Item) operand {
	v, ok := items[item]
	if !ok {
		return operand{}
	}
	return operand{value: v.Value, ok: true}
}

// requirePositive narrows an operand to strictly positive values, used for
// denominators where zero or negative figures make the ratio meaningless
// (revenue, equity, assets).
func requirePositive(op operand) operand {
	if !op.ok || op.value.Sign() <= 0 {
		return operand{}
	}
	return op
}

// averageBalance returns the two-period average of a balance-sheet item, or
// an absent operand when either period misses it or there is no prior
// period at all.
func averageBalance(items, prev map[models.Item]models.NormalizedValue, item models.Item) operand {
	if prev == nil {
		return operand{}
	}
	current := operandOf(items, item)
	prior := operandOf(prev, item)
	if !current.ok || !prior.ok {
		return operand{}
	}
	return operand{value: current.value.Add(prior.value).Div(two), ok: true}
}

// divide applies the general division policy: non-computable when either
// operand is absent or the denominator is exactly zero.
func (e *RatioEngine) divide(name string, category models.RatioCategory, num, denom operand) models.RatioResult {
	if !num.ok || !denom.ok || denom.value.IsZero() {
		return models.RatioResult{Name: name, Category: category, Computable: false}
	}
	return e.computed(name, category, num.value.Div(denom.value))
}

func (e *RatioEngine) priceToEarnings(netIncome operand, market *models.MarketData) models.RatioResult {
	name := models.RatioPriceToEarnings
	if market == nil || !netIncome.ok ||
		market.Price.Sign() <= 0 || market.SharesOutstanding.Sign() <= 0 {
		return models.RatioResult{Name: name, Category: models.CategoryValuation, Computable: false}
	}
	eps := netIncome.value.Div(market.SharesOutstanding)
	// Negative or zero earnings make the multiple meaningless.
	if eps.Sign() <= 0 {
		return models.RatioResult{Name: name, Category: models.CategoryValuation, Computable: false}
	}
	return e.computed(name, models.CategoryValuation, market.Price.Div(eps))
}

func (e *RatioEngine) priceToBook(equity operand, market *models.MarketData) models.RatioResult {
	name := models.RatioPriceToBook
	if market == nil || !equity.ok || equity.value.Sign() <= 0 ||
		market.Price.Sign() <= 0 || market.SharesOutstanding.Sign() <= 0 {
		return models.RatioResult{Name: name, Category: models.CategoryValuation, Computable: false}
	}
	bookPerShare := equity.value.Div(market.SharesOutstanding)
	return e.computed(name, models.CategoryValuation, market.Price.Div(bookPerShare))
}

func (e *RatioEngine) computed(name string, category models.RatioCategory, value decimal.Decimal) models.RatioResult {
	v := value
	return models.RatioResult{
		Name:       name,
		Category:   category,
		Value:      &v,
		Computable: true,
		Band:       e.band(name, value),
	}
}

// band resolves the interpretation band for a computed value from the
// configured cut points.
func (e *RatioEngine) band(name string, value decimal.Decimal) string {
	spec, ok := e.cfg.Bands[name]
	if !ok {
		return ""
	}
	v, _ := value.Float64()
	idx := 0
	for _, cut := range spec.Cuts {
		if v >= cut {
			idx++
		} else {
			break
		}
	}
	return spec.Labels[idx]
}
