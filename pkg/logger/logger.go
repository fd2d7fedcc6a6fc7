package logger

import (
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level      string `env:"LOG_LEVEL"`
	Filename   string `env:"LOG_FILENAME"`
	MaxSize    int    `env:"LOG_MAX_SIZE"` // megabytes
	MaxAge     int    `env:"LOG_MAX_AGE"`  // days
	MaxBackups int    `env:"LOG_MAX_BACKUPS"`
}

var log = zap.NewNop()

// Init builds the global logger. When Filename is set, output rotates
// through lumberjack; otherwise it goes to stderr.
func Init(cfg LogConfig) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if cfg.Filename != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	log = zap.New(core, zap.AddCaller())
}

func L() *zap.Logger { return log }

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }

func Sync() { _ = log.Sync() }
