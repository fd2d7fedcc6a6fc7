package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DbField        = "db"
	RequestIDField = "request_id"
)

// InjectDB exposes the shared gorm handle to downstream handlers.
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DbField, db)
		c.Next()
	}
}

// RequestID tags every request with a trace id, honoring an inbound
// X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDField, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
