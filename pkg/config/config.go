package config

import (
	"log"
	"os"

	"basapp/pkg/logger"
	"basapp/pkg/util"
)

// config/config.go
type Config struct {
	DBDriver  string `env:"DB_DRIVER"`
	DSN       string `env:"DSN"`
	Log       logger.LogConfig
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`

	// SMS gateway token secret, shared with the carrier-side signer.
	SMSSecretKey string `env:"SMS_SECRET_KEY"`

	// Google reverse geocoding.
	MapsAPIKey  string `env:"MAPS_API_KEY"`
	MapsBaseURL string `env:"MAPS_BASE_URL"`

	// Enrichment behaviour.
	EnrichmentTimeoutSeconds int64 `env:"ENRICHMENT_TIMEOUT_SECONDS"`

	// Cache backend: local | redis.
	CacheType     string `env:"CACHE_TYPE"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int64  `env:"REDIS_DB"`

	// Rate limiting, e.g. "100-M".
	RateLimit    string `env:"RATE_LIMIT"`
	SMSRateLimit string `env:"SMS_RATE_LIMIT"`

	// Cron spec for the nightly notification prune.
	NotificationPruneSchedule string `env:"NOTIFICATION_PRUNE_SCHEDULE"`
	NotificationRetentionDays int64  `env:"NOTIFICATION_RETENTION_DAYS"`
}

var GlobalConfig *Config

func Load() error {
	// 1. per-environment .env file
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. global config
	GlobalConfig = &Config{
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnv("MODE"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/v1"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		SMSSecretKey:              util.GetEnv("SMS_SECRET_KEY"),
		MapsAPIKey:                util.GetEnv("MAPS_API_KEY"),
		MapsBaseURL:               util.GetEnv("MAPS_BASE_URL"),
		EnrichmentTimeoutSeconds:  util.GetIntEnv("ENRICHMENT_TIMEOUT_SECONDS"),
		CacheType:                 util.GetEnvDefault("CACHE_TYPE", "local"),
		RedisAddr:                 util.GetEnv("REDIS_ADDR"),
		RedisPassword:             util.GetEnv("REDIS_PASSWORD"),
		RedisDB:                   util.GetIntEnv("REDIS_DB"),
		RateLimit:                 util.GetEnvDefault("RATE_LIMIT", "300-M"),
		SMSRateLimit:              util.GetEnvDefault("SMS_RATE_LIMIT", "60-M"),
		NotificationPruneSchedule: util.GetEnvDefault("NOTIFICATION_PRUNE_SCHEDULE", "0 4 * * *"),
		NotificationRetentionDays: util.GetIntEnv("NOTIFICATION_RETENTION_DAYS"),
	}
	return nil
}
