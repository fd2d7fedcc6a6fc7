package handler

import (
	"time"

	"basapp/internal/enrichment"
	"basapp/internal/fanout"
	"basapp/internal/resolver"
	"basapp/pkg/cache"
	"basapp/pkg/config"
	"basapp/pkg/metrics"
	"basapp/pkg/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handlers struct {
	db       *gorm.DB
	resolver *resolver.Resolver
	enricher *enrichment.Orchestrator
	fanout   *fanout.Fanout
	cache    cache.Cache
}

func NewHandlers(db *gorm.DB, res *resolver.Resolver, enricher *enrichment.Orchestrator, fan *fanout.Fanout, c cache.Cache) *Handlers {
	return &Handlers{
		db:       db,
		resolver: res,
		enricher: enricher,
		fanout:   fan,
		cache:    c,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(middleware.RequestID())
	engine.Use(metrics.Middleware())
	engine.GET("/metrics", metrics.Handler())

	r := engine.Group(config.GlobalConfig.APIPrefix)
	r.Use(middleware.InjectDB(h.db))
	r.Use(middleware.RateLimiter(config.GlobalConfig.RateLimit))

	h.registerSystemRoutes(r)
	h.registerAlertRoutes(r)
	h.registerSMSRoutes(r)
	h.registerStatisticsRoutes(r)
}

func (h *Handlers) registerAlertRoutes(r *gin.RouterGroup) {
	alerts := r.Group("alerts")
	alerts.Use(h.AuthRequired)
	alerts.Use(middleware.OperatorLogMiddleware())
	{
		alerts.POST("", middleware.Idempotency(5*time.Minute), h.handleCreateAlert)

		alerts.GET("", h.handleListAlerts)

		alerts.GET("/:id", h.handleGetAlert)

		alerts.PATCH("/:id/state", h.handleChangeAlertState)

		alerts.POST("/:id/checkpoints", h.handleAddCheckpoint)

		alerts.GET("/:id/checkpoints", h.handleListCheckpoints)
	}

	alertTypes := r.Group("alert-types")
	alertTypes.Use(h.AuthRequired)
	{
		alertTypes.GET("", h.handleListAlertTypes)
	}
}

// The SMS gateway authenticates by signed token, not by session.
func (h *Handlers) registerSMSRoutes(r *gin.RouterGroup) {
	sms := r.Group("sms")
	sms.Use(middleware.RateLimiter(config.GlobalConfig.SMSRateLimit))
	{
		sms.GET("/alerts", h.handleSMSAlert)
	}
}

func (h *Handlers) registerStatisticsRoutes(r *gin.RouterGroup) {
	statistics := r.Group("statistics")
	statistics.Use(h.AuthRequired)
	{
		statistics.GET("/alerts", h.handleAlertStatistics)

		statistics.GET("/events", h.handleEventStatistics)
	}
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.HealthCheck)
	}
}
