package core

import (
	"portal/internal/activity"
	c "portal/internal/cache"
	"portal/internal/configuration"
	"portal/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger replaces the global logger with a production logger at level.
func NewLogger(level string) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		zap.L().Warn("Unknown log level, keeping info", zap.String("level", level))
		atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zap.ReplaceGlobals(zap.Must(config.Build()))
}

func NewCache(config models.CacheConfiguration) c.ICache {
	var cache c.ICache
	var err error

	switch config.Type {
	case configuration.ProviderRedis:
		cache, err = c.NewRedisCache(*config.Redis)
	case configuration.ProviderValkey:
		cache, err = c.NewValkeyCache(*config.Valkey)
	case configuration.ProviderMemory:
		cache = c.NewMemoryCache()
	}

	if err != nil {
		zap.L().Fatal("Failed to initialize cache", zap.String("type", config.Type), zap.Error(err))
	}

	zap.L().Info("Initialized cache", zap.String("type", config.Type))
	return cache
}

func NewActivityLogger(config models.ActivityConfiguration) activity.IActivityLogger {
	activityLogger, err := activity.NewFilesystemClient(config)
	if err != nil {
		zap.L().Fatal("Failed to initialize activity logger", zap.String("type", config.Type), zap.Error(err))
	}
	return activityLogger
}
