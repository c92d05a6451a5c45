package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/models"
	"github.com/finsightlab/finsight-go/internal/services"
)

// AnalysisHandler exposes the analysis pipeline over HTTP. The handler is
// glue only: data acquisition happens upstream, report rendering
// downstream; this layer just moves the structured objects across.
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *logrus.Logger
}

func NewAnalysisHandler(service *services.AnalysisService, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

// Analyze accepts a company's collected raw facts plus an optional market
// record and returns the full analysis object.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	analysis, err := h.service.Analyze(req)
	if err != nil {
		if errors.Is(err, services.ErrNoFacts) || errors.Is(err, services.ErrNoStatement) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).WithField("ticker", req.Ticker).Error("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
