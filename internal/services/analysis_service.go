package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

// ErrNoStatement is returned when normalization produced no usable
// statement for the company, the second fatal input error next to
// ErrNoFacts.
var ErrNoStatement = errors.New("no normalized statement could be produced")

// AnalysisService runs the full pipeline: raw facts in, normalized
// statement, ratio catalogue, trends and risk assessment out. Data flows
// strictly forward; no stage mutates a predecessor's output, and the
// service keeps no state between runs.
type AnalysisService struct {
	cfg        *config.Config
	logger     *logrus.Logger
	normalizer *Normalizer
	ratios     *RatioEngine
	trends     *TrendAnalyzer
	risk       *RiskAssessor
}

// NewAnalysisService wires the pipeline stages from one configuration.
func NewAnalysisService(cfg *config.Config, logger *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		cfg:        cfg,
		logger:     logger,
		normalizer: NewNormalizer(cfg.Normalizer, logger),
		ratios:     NewRatioEngine(cfg.Ratios, logger),
		trends:     NewTrendAnalyzer(),
		risk:       NewRiskAssessor(cfg.Risk, logger),
	}
}

// Analyze produces the complete analysis object for one company. It fails
// only on an empty fact collection or when no statement at all can be
// normalized; every lesser data problem degrades to warnings and
// non-computable entries.
func (s *AnalysisService) Analyze(req models.AnalysisRequest) (*models.Analysis, error) {
	statement, warnings, err := s.normalizer.Normalize(req.Ticker, req.Facts)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", req.Ticker, err)
	}

	hasItems := false
	for _, items := range statement.Items {
		if len(items) > 0 {
			hasItems = true
			break
		}
	}
	if !hasItems {
		return nil, fmt.Errorf("analyze %s: %w", req.Ticker, ErrNoStatement)
	}

	// Ratios per period, chronological so each period sees its predecessor
	// for the turnover averages. The market record describes the present,
	// so valuation ratios are only attempted for the latest period.
	ratiosByPeriod := make(map[string]map[string]models.RatioResult, len(statement.Periods))
	var prev map[models.Item]models.NormalizedValue
	for i, period := range statement.Periods {
		var market *models.MarketData
		if i == len(statement.Periods)-1 {
			market = req.MarketData
		}
		ratiosByPeriod[period] = s.ratios.Calculate(statement.Items[period], prev, market)
		prev = statement.Items[period]
	}

	trends := make([]models.TrendResult, 0, len(s.cfg.Trends.Metrics))
	for _, metric := range s.cfg.Trends.Metrics {
		series := s.buildSeries(metric, statement, ratiosByPeriod)
		trend := s.trends.Analyze(metric, series)
		if !trend.Sufficient {
			warnings = append(warnings, models.Warning{
				Code:    models.WarnInsufficientPeriods,
				Item:    metric,
				Message: fmt.Sprintf("%s has %d usable period(s), trend needs at least 2", metric, trend.Periods),
			})
		}
		trends = append(trends, trend)
	}

	latest := statement.LatestPeriod()
	risk := s.risk.Assess(ratiosByPeriod[latest], trends)

	analysis := &models.Analysis{
		ID:           uuid.New().String(),
		Ticker:       req.Ticker,
		GeneratedAt:  time.Now().UTC(),
		Statement:    statement,
		Ratios:       ratiosByPeriod,
		LatestPeriod: latest,
		Trends:       trends,
		Risk:         risk,
		Warnings:     warnings,
	}

	s.logger.WithFields(logrus.Fields{
		"ticker":        req.Ticker,
		"analysis_id":   analysis.ID,
		"periods":       len(statement.Periods),
		"overall_level": risk.OverallLevel,
	}).Info("Analysis completed")

	return analysis, nil
}

// buildSeries collects a metric's per-period values, skipping periods where
// the metric is absent or non-computable. Metrics are either canonical
// items or ratio names.
func (s *AnalysisService) buildSeries(
	metric string,
	statement *models.NormalizedStatement,
	ratiosByPeriod map[string]map[string]models.RatioResult,
) []models.SeriesPoint {
	var series []models.SeriesPoint
	if isCanonicalItem(metric) {
		item := models.Item(metric)
		for _, period := range statement.Periods {
			if v, ok := statement.Lookup(period, item); ok {
				series = append(series, models.SeriesPoint{Period: period, Value: v.Value})
			}
		}
		return series
	}
	for _, period := range statement.Periods {
		if r, ok := ratiosByPeriod[period][metric]; ok && r.Computable && r.Value != nil {
			series = append(series, models.SeriesPoint{Period: period, Value: *r.Value})
		}
	}
	return series
}

func isCanonicalItem(metric string) bool {
	for _, item := range models.AllItems() {
		if string(item) == metric {
			return true
		}
	}
	return false
}
