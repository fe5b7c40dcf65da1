package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ctleads/harvester/pkg/logger"
)

// SetupRoutes configures the read-only query surface
func SetupRoutes(router *gin.Engine, db *gorm.DB, logger *logger.Logger) {
	h := NewHandlers(db, logger)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/cases", h.ListCases)
		api.GET("/cases/:docket", h.GetCase)
	}
}
