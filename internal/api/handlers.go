package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ctleads/harvester/internal/database"
	"github.com/ctleads/harvester/pkg/logger"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, logger *logger.Logger) *Handlers {
	return &Handlers{db: db, logger: logger}
}

// HealthCheck returns the service status
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"time":   time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// ListCases returns stored cases, optionally filtered by town
func (h *Handlers) ListCases(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	query := h.db.Order("created_at DESC").Limit(limit)
	if town := c.Query("town"); town != "" {
		query = query.Where("town = ?", town)
	}

	var cases []database.Case
	if err := query.Find(&cases).Error; err != nil {
		h.logger.Error("Failed to list cases", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(cases),
		"cases": cases,
	})
}

// GetCase returns one case with its parties
func (h *Handlers) GetCase(c *gin.Context) {
	docket := c.Param("docket")

	var record database.Case
	err := h.db.Preload("Parties", func(db *gorm.DB) *gorm.DB {
		return db.Order("role, id")
	}).Where("docket_no = ?", docket).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load case", "docket", docket, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load case"})
		return
	}

	c.JSON(http.StatusOK, record)
}
