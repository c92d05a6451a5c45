package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/finsightlab/finsight-go/internal/models"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Normalizer  NormalizerConfig `mapstructure:"normalizer"`
	Ratios      RatiosConfig     `mapstructure:"ratios"`
	Trends      TrendsConfig     `mapstructure:"trends"`
	Risk        RiskConfig       `mapstructure:"risk"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// NormalizerConfig drives cross-source reconciliation. Aliases maps each
// canonical item to the ordered list of raw labels it is known under; order
// expresses preference when one source reports several of them.
// SourcePriority orders sources for conflict resolution; sources not listed
// rank after the listed ones in first-appearance order.
type NormalizerConfig struct {
	DisagreementTolerance float64             `mapstructure:"disagreement_tolerance"`
	SourcePriority        []string            `mapstructure:"source_priority"`
	Aliases               map[string][]string `mapstructure:"aliases"`
}

// BandSpec defines the interpretation bands for one ratio as ordered cut
// points: a value falls into Labels[i] where i is the number of cuts it
// reached. Labels must be one longer than Cuts. For lower-is-better ratios
// the labels simply run from best to worst.
type BandSpec struct {
	Cuts   []float64 `mapstructure:"cuts"`
	Labels []string  `mapstructure:"labels"`
}

type RatiosConfig struct {
	Bands map[string]BandSpec `mapstructure:"bands"`
}

type TrendsConfig struct {
	// Metrics lists the canonical items and ratio names tracked across
	// periods. Ratio names are lowercase snake case, canonical items keep
	// their schema spelling.
	Metrics []string `mapstructure:"metrics"`
}

// SubMetric is one ratio's contribution to a risk dimension. Weight is in
// points out of the dimension's 100. LowerIsBetter metrics score through the
// inverted mapping weight*min(1, benchmark/value); ZeroIsBest marks the ones
// where a value of exactly zero is the natural optimum (e.g. no debt).
type SubMetric struct {
	Ratio         string  `mapstructure:"ratio"`
	Weight        float64 `mapstructure:"weight"`
	Benchmark     float64 `mapstructure:"benchmark"`
	LowerIsBetter bool    `mapstructure:"lower_is_better"`
	ZeroIsBest    bool    `mapstructure:"zero_is_best"`
}

// TrendSignal connects a tracked metric to the risk dimension its trend
// adjusts. LowerIsBetter flips the adjustment for metrics where a falling
// value is the healthy direction.
type TrendSignal struct {
	Metric        string `mapstructure:"metric"`
	Dimension     string `mapstructure:"dimension"`
	LowerIsBetter bool   `mapstructure:"lower_is_better"`
}

type RiskConfig struct {
	DimensionWeights map[string]float64     `mapstructure:"dimension_weights"`
	Dimensions       map[string][]SubMetric `mapstructure:"dimensions"`
	TrendSignals     []TrendSignal          `mapstructure:"trend_signals"`
	TrendPenalty     float64                `mapstructure:"trend_penalty"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)
	applyStructuredDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the parts of the configuration the engine cannot degrade
// around.
func (c *Config) Validate() error {
	if c.Normalizer.DisagreementTolerance < 0 {
		return fmt.Errorf("normalizer disagreement tolerance must be non-negative, got %v", c.Normalizer.DisagreementTolerance)
	}
	for name, spec := range c.Ratios.Bands {
		if len(spec.Labels) != len(spec.Cuts)+1 {
			return fmt.Errorf("band spec for %s must carry one more label than cuts (%d cuts, %d labels)",
				name, len(spec.Cuts), len(spec.Labels))
		}
		for i := 1; i < len(spec.Cuts); i++ {
			if spec.Cuts[i] <= spec.Cuts[i-1] {
				return fmt.Errorf("band cuts for %s must be strictly ascending", name)
			}
		}
	}
	for dim, metrics := range c.Risk.Dimensions {
		for _, m := range metrics {
			if m.Weight < 0 {
				return fmt.Errorf("risk sub-metric %s in %s has negative weight", m.Ratio, dim)
			}
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)

	// Normalizer
	viper.SetDefault("normalizer.disagreement_tolerance", 0.05)
	viper.SetDefault("normalizer.source_priority", []string{"sec_edgar", "yfinance", "stockanalysis"})
	viper.SetDefault("normalizer.aliases", DefaultAliases())

	// Trends
	viper.SetDefault("trends.metrics", []string{
		string(models.ItemRevenue),
		string(models.ItemNetIncome),
		models.RatioNetMargin,
		models.RatioCurrentRatio,
		models.RatioDebtToEquity,
		models.RatioROE,
	})

	// Risk
	viper.SetDefault("risk.trend_penalty", 5.0)
	viper.SetDefault("risk.dimension_weights", map[string]float64{
		models.DimensionLiquidity:   0.25,
		models.DimensionSolvency:    0.30,
		models.DimensionOperational: 0.25,
		models.DimensionMarket:      0.20,
	})
}

// applyStructuredDefaults fills the nested band and risk tables when the
// config file does not override them. They are too deeply structured for
// viper defaults to express cleanly.
func applyStructuredDefaults(c *Config) {
	if len(c.Ratios.Bands) == 0 {
		c.Ratios.Bands = DefaultBands()
	}
	if len(c.Risk.Dimensions) == 0 {
		c.Risk.Dimensions = DefaultRiskDimensions()
	}
	if len(c.Risk.TrendSignals) == 0 {
		c.Risk.TrendSignals = DefaultTrendSignals()
	}
}

// DefaultAliases is the shipped alias table: canonical item to the ordered
// raw labels seen across SEC XBRL tags and aggregator field names. Matching
// is case and whitespace insensitive, so entries are stored lowercased.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		string(models.ItemRevenue): {
			"revenues", "revenue",
			"revenue from contract with customer excluding assessed tax",
			"total revenue", "net sales", "sales",
		},
		string(models.ItemCostOfGoodsSold): {
			"cost of revenue", "cost of goods sold", "cost of sales", "cogs",
		},
		string(models.ItemGrossProfit): {
			"gross profit",
		},
		string(models.ItemOperatingIncome): {
			"operating income loss", "operating income",
			"income from operations", "ebit",
		},
		string(models.ItemNetIncome): {
			"net income loss", "net income", "net earnings",
			"net income to common",
		},
		string(models.ItemInterestExpense): {
			"interest expense", "interest expense net",
		},
		string(models.ItemEBITDA): {
			"ebitda",
		},
		string(models.ItemCash): {
			"cash and cash equivalents at carrying value",
			"cash and cash equivalents", "cash and equivalents", "cash",
		},
		string(models.ItemAccountsReceivable): {
			"accounts receivable net current", "accounts receivable",
			"receivables net",
		},
		string(models.ItemInventory): {
			"inventory net", "inventories", "inventory",
		},
		string(models.ItemCurrentAssets): {
			"assets current", "total current assets", "current assets",
		},
		string(models.ItemTotalAssets): {
			"assets", "total assets",
		},
		string(models.ItemCurrentLiabilities): {
			"liabilities current", "total current liabilities", "current liabilities",
		},
		string(models.ItemTotalLiabilities): {
			"liabilities", "total liabilities",
		},
		string(models.ItemTotalDebt): {
			"total debt", "long term debt", "debt total",
		},
		string(models.ItemShareholdersEquity): {
			"stockholders equity", "shareholders equity",
			"total stockholders equity", "total equity",
		},
		string(models.ItemOperatingCashFlow): {
			"net cash provided by used in operating activities",
			"operating cash flow", "cash from operations",
		},
		string(models.ItemSharesOutstanding): {
			"weighted average number of shares outstanding basic",
			"weighted average shares outstanding", "shares outstanding",
		},
	}
}

// DefaultBands holds the interpretation thresholds for every ratio in the
// catalogue. Lower-is-better ratios (debt and valuation multiples) list
// their labels from best to worst.
func DefaultBands() map[string]BandSpec {
	return map[string]BandSpec{
		models.RatioCurrentRatio: {
			Cuts:   []float64{1.0, 1.5, 2.0},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioQuickRatio: {
			Cuts:   []float64{0.5, 1.0, 1.5},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioCashRatio: {
			Cuts:   []float64{0.2, 0.5, 1.0},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioGrossMargin: {
			Cuts:   []float64{0.2, 0.4, 0.6},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioOperatingMargin: {
			Cuts:   []float64{0.05, 0.15, 0.25},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioNetMargin: {
			Cuts:   []float64{0.0, 0.05, 0.15},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioEBITDAMargin: {
			Cuts:   []float64{0.1, 0.2, 0.3},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioROE: {
			Cuts:   []float64{0.05, 0.15, 0.25},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioROA: {
			Cuts:   []float64{0.02, 0.05, 0.10},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioDebtToEquity: {
			Cuts:   []float64{0.4, 1.0, 2.0},
			Labels: []string{"excellent", "good", "acceptable", "poor"},
		},
		models.RatioDebtToAssets: {
			Cuts:   []float64{0.3, 0.5, 0.7},
			Labels: []string{"excellent", "good", "acceptable", "poor"},
		},
		models.RatioInterestCoverage: {
			Cuts:   []float64{1.5, 3.0, 8.0},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioDebtServiceCoverage: {
			Cuts:   []float64{0.2, 0.4, 0.6},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioAssetTurnover: {
			Cuts:   []float64{0.5, 1.0, 1.5},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioInventoryTurnover: {
			Cuts:   []float64{2.0, 4.0, 8.0},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioReceivablesTurnover: {
			Cuts:   []float64{4.0, 8.0, 12.0},
			Labels: []string{"poor", "acceptable", "good", "excellent"},
		},
		models.RatioPriceToEarnings: {
			Cuts:   []float64{15.0, 25.0, 40.0},
			Labels: []string{"excellent", "good", "acceptable", "poor"},
		},
		models.RatioPriceToBook: {
			Cuts:   []float64{1.0, 3.0, 6.0},
			Labels: []string{"excellent", "good", "acceptable", "poor"},
		},
	}
}

// DefaultRiskDimensions defines which ratios feed each risk dimension.
// Weights within a dimension sum to 100.
func DefaultRiskDimensions() map[string][]SubMetric {
	return map[string][]SubMetric{
		models.DimensionLiquidity: {
			{Ratio: models.RatioCurrentRatio, Weight: 50, Benchmark: 2.0},
			{Ratio: models.RatioQuickRatio, Weight: 30, Benchmark: 1.0},
			{Ratio: models.RatioCashRatio, Weight: 20, Benchmark: 0.5},
		},
		models.DimensionSolvency: {
			{Ratio: models.RatioDebtToEquity, Weight: 40, Benchmark: 1.0, LowerIsBetter: true, ZeroIsBest: true},
			{Ratio: models.RatioDebtToAssets, Weight: 30, Benchmark: 0.5, LowerIsBetter: true, ZeroIsBest: true},
			{Ratio: models.RatioInterestCoverage, Weight: 30, Benchmark: 5.0},
		},
		models.DimensionOperational: {
			{Ratio: models.RatioNetMargin, Weight: 30, Benchmark: 0.10},
			{Ratio: models.RatioROE, Weight: 25, Benchmark: 0.15},
			{Ratio: models.RatioROA, Weight: 20, Benchmark: 0.05},
			{Ratio: models.RatioAssetTurnover, Weight: 25, Benchmark: 1.0},
		},
		models.DimensionMarket: {
			{Ratio: models.RatioPriceToEarnings, Weight: 50, Benchmark: 20.0, LowerIsBetter: true},
			{Ratio: models.RatioPriceToBook, Weight: 50, Benchmark: 3.0, LowerIsBetter: true},
		},
	}
}

// DefaultTrendSignals maps tracked metrics to the risk dimension their
// trend adjusts.
func DefaultTrendSignals() []TrendSignal {
	return []TrendSignal{
		{Metric: string(models.ItemRevenue), Dimension: models.DimensionOperational},
		{Metric: models.RatioNetMargin, Dimension: models.DimensionOperational},
		{Metric: models.RatioROE, Dimension: models.DimensionOperational},
		{Metric: models.RatioCurrentRatio, Dimension: models.DimensionLiquidity},
		{Metric: models.RatioDebtToEquity, Dimension: models.DimensionSolvency, LowerIsBetter: true},
	}
}
