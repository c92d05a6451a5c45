package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
	"github.com/finsightlab/finsight-go/internal/services"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Environment: "test",
		Normalizer: config.NormalizerConfig{
			DisagreementTolerance: 0.05,
			SourcePriority:        []string{"sec_edgar", "yfinance"},
			Aliases:               config.DefaultAliases(),
		},
		Ratios: config.RatiosConfig{Bands: config.DefaultBands()},
		Trends: config.TrendsConfig{Metrics: []string{string(models.ItemRevenue)}},
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

	router := gin.New()
	handler := NewAnalysisHandler(services.NewAnalysisService(cfg, logger), logger)
	router.POST("/api/v1/analysis", handler.Analyze)
	router.GET("/health", HealthCheck)
	return router
}

func postAnalysis(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := testRouter()

	body := `{
		"ticker": "ACME",
		"facts": [
			{"source_id": "sec_edgar", "raw_label": "Revenues", "period_end": "2023-12-31", "value": "1200", "unit": "USD"},
			{"source_id": "sec_edgar", "raw_label": "NetIncomeLoss", "period_end": "2023-12-31", "value": "150", "unit": "USD"},
			{"source_id": "sec_edgar", "raw_label": "AssetsCurrent", "period_end": "2023-12-31", "value": "330", "unit": "USD"},
			{"source_id": "sec_edgar", "raw_label": "LiabilitiesCurrent", "period_end": "2023-12-31", "value": "220", "unit": "USD"}
		]
	}`
	w := postAnalysis(router, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ACME", resp.Ticker)
	assert.Equal(t, "2023-12-31", resp.LatestPeriod)
	assert.NotEmpty(t, resp.Ratios["2023-12-31"])
	assert.NotNil(t, resp.Risk)
}

func TestAnalyzeEndpointMissingTicker(t *testing.T) {
	router := testRouter()

	w := postAnalysis(router, `{"facts": [{"source_id": "s", "raw_label": "Revenues", "period_end": "2023-12-31", "value": "1"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ticker is required")
}

func TestAnalyzeEndpointMalformedBody(t *testing.T) {
	router := testRouter()

	w := postAnalysis(router, `{"ticker": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestAnalyzeEndpointNoFacts(t *testing.T) {
	router := testRouter()

	w := postAnalysis(router, `{"ticker": "ACME", "facts": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAnalyzeEndpointNoUsableStatement(t *testing.T) {
	router := testRouter()

	w := postAnalysis(router, `{
		"ticker": "ACME",
		"facts": [
			{"source_id": "sec_edgar", "raw_label": "Revenues", "period_end": "2023-12-31", "value": "N/A"}
		]
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
}
