package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/handler"
	"github.com/gpsfleet/fleet-reports-go/internal/middleware"
)

// SetupRouter wires the HTTP surface.
func SetupRouter(reports *handler.ReportHandler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Fleet Report API is running",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/reports", reports.ListReports)
		api.POST("/reports/generate", reports.Generate)
		api.GET("/reports/jobs/:id", reports.GetJob)
		api.GET("/reports/jobs/:id/download", reports.Download)
	}

	return r
}
