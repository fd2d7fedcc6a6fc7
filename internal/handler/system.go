package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports database reachability.
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
