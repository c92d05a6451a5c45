package services

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		Normalizer: config.NormalizerConfig{
			DisagreementTolerance: 0.05,
			SourcePriority:        []string{"sec_edgar", "yfinance"},
			Aliases:               config.DefaultAliases(),
		},
		Ratios: config.RatiosConfig{Bands: config.DefaultBands()},
		Trends: config.TrendsConfig{Metrics: []string{
			string(models.ItemRevenue),
			models.RatioNetMargin,
			models.RatioCurrentRatio,
			models.RatioDebtToEquity,
		}},
		Risk: config.RiskConfig{
			DimensionWeights: map[string]float64{
				models.DimensionLiquidity:   0.25,
				models.DimensionSolvency:    0.30,
				models.DimensionOperational: 0.25,
				models.DimensionMarket:      0.20,
			},
			Dimensions:   config.DefaultRiskDimensions(),
			TrendSignals: config.DefaultTrendSignals(),
			TrendPenalty: 5.0,
		},
	}
}

// itemsOf builds one period's normalized items from literal figures.
func itemsOf(values map[models.Item]string) map[models.Item]models.NormalizedValue {
	items := make(map[models.Item]models.NormalizedValue, len(values))
	for item, raw := range values {
		items[item] = models.NormalizedValue{
			Value:     decimal.RequireFromString(raw),
			Sources:   []string{"sec_edgar"},
			Agreement: true,
		}
	}
	return items
}

func fact(source, label, period, value string) models.RawFact {
	return models.RawFact{SourceID: source, RawLabel: label, PeriodEnd: period, Value: value, Unit: "USD"}
}
