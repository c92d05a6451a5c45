package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsightlab/finsight-go/internal/api/handlers"
	"github.com/finsightlab/finsight-go/internal/services"
)

// SetupRoutes registers the HTTP surface: a health probe and the analysis
// endpoint.
func SetupRoutes(router *gin.Engine, analysisService *services.AnalysisService, logger *logrus.Logger) {
	router.GET("/health", handlers.HealthCheck)

	analysisHandler := handlers.NewAnalysisHandler(analysisService, logger)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analysis", analysisHandler.Analyze)
	}
}
