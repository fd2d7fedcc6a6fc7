package middleware

import (
	"time"

	"basapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperatorLog is one audit row per mutating operator request.
type OperatorLog struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"userId" gorm:"index"`
	Action    string `json:"action" gorm:"size:10"`
	Target    string `json:"target" gorm:"size:255"`
	IPAddress string `json:"ipAddress" gorm:"size:64"`
	Platform  string `json:"platform" gorm:"size:64"`
	Browser   string `json:"browser" gorm:"size:64"`
	Status    int    `json:"status"`
	CreatedAt time.Time
}

// OperatorLogMiddleware records mutating requests once the handler
// chain has finished. Audit failures are logged, never surfaced.
func OperatorLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			return
		}
		db, ok := c.MustGet(DbField).(*gorm.DB)
		if !ok {
			return
		}
		userID, _ := c.Get("user_id")
		uid, _ := userID.(uint)

		ua := user_agent.New(c.GetHeader("User-Agent"))
		browser, version := ua.Browser()

		entry := OperatorLog{
			UserID:    uid,
			Action:    c.Request.Method,
			Target:    c.Request.URL.Path,
			IPAddress: c.ClientIP(),
			Platform:  ua.Platform(),
			Browser:   browser + " " + version,
			Status:    c.Writer.Status(),
		}
		if err := db.Create(&entry).Error; err != nil {
			logger.Warn("operator log write failed", zap.Error(err))
		}
	}
}
