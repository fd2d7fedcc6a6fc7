package main

import (
	"context"
	"time"

	"basapp/internal/enrichment"
	"basapp/internal/fanout"
	"basapp/internal/handler"
	"basapp/internal/models"
	"basapp/internal/resolver"
	"basapp/pkg/cache"
	"basapp/pkg/config"
	"basapp/pkg/geo"
	"basapp/pkg/logger"
	"basapp/pkg/notification"
	"basapp/pkg/scheduler"
	"basapp/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// notificationPruner deletes fanout records past the retention window.
type notificationPruner struct {
	db            *gorm.DB
	retentionDays int
}

func (p *notificationPruner) Run(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -p.retentionDays)
	pruned, err := models.PruneNotifications(p.db, cutoff)
	if err != nil {
		logger.Warn("notification prune failed", zap.Error(err))
		return
	}
	logger.Info("notification prune done", zap.Int64("pruned", pruned))
}

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("database open failed", zap.Error(err))
		return
	}
	if err := models.Migrate(db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return
	}

	appCache, err := cache.NewCache(cache.Config{
		Type: cfg.CacheType,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       int(cfg.RedisDB),
		},
	})
	if err != nil {
		logger.Error("cache init failed", zap.Error(err))
		return
	}
	defer appCache.Close()

	geocoder, err := geo.NewCachedGeocoder(geo.NewGoogleGeocoder(cfg.MapsAPIKey, cfg.MapsBaseURL), 4096)
	if err != nil {
		logger.Error("geocoder init failed", zap.Error(err))
		return
	}

	timeout := time.Duration(cfg.EnrichmentTimeoutSeconds) * time.Second
	enricher := enrichment.New(db, geocoder, timeout)
	res := resolver.New(db, geocoder)
	fan := fanout.New(db, notification.NewPush(nil), appCache)

	// nightly notification prune
	cr := scheduler.NewCron(nil)
	retention := cfg.NotificationRetentionDays
	if retention <= 0 {
		retention = 90
	}
	if _, err := cr.Add(cfg.NotificationPruneSchedule, &notificationPruner{db: db, retentionDays: int(retention)}); err != nil {
		logger.Warn("notification prune not scheduled", zap.Error(err))
	}
	cr.Start()
	defer cr.Stop()

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	handler.NewHandlers(db, res, enricher, fan, appCache).Register(engine)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := engine.Run(cfg.Addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
