package main

import (
	"context"
	"os/signal"
	"syscall"

	"portal/internal/configuration"
	"portal/internal/core"
	"portal/internal/database"
	"portal/internal/lang"
	"portal/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))

	config := configuration.Read()
	core.NewLogger(config.App.LogLevel)
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := core.InitTelemetry(ctx, config.Telemetry)
	if err != nil {
		zap.L().Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	profile, err := configuration.GetProfile(config.App.Profile)
	if err != nil {
		zap.L().Fatal("Failed to load profile", zap.Error(err))
	}
	zap.L().Info("Loaded profile", zap.String("profile", profile.Name))

	translator, err := lang.New(config.App.Locale)
	if err != nil {
		zap.L().Fatal("Failed to load translations", zap.Error(err))
	}

	engine := validation.NewEngine(translator)
	engine.Register(validation.UserValidator{})

	db := database.InitDB(config.Database)
	cache := core.NewCache(config.Cache)
	defer func() { _ = cache.Close() }()

	eventsManager, err := core.NewEventsManager(config.Events, profile.Workers.Notifications.Runs())
	if err != nil {
		zap.L().Fatal("Failed to initialize events", zap.Error(err))
	}
	defer eventsManager.Close()

	appIdentity := uuid.New().String()

	if profile.Workers.AnyEnabled() {
		notify := core.NewNotifier(config.Notifier)
		core.StartWorkers(ctx, profile, eventsManager, db, notify, translator, config, cache, appIdentity)
	}

	if !profile.HTTPServer {
		zap.L().Info("Running in worker-only mode")
		<-ctx.Done()
		zap.L().Info("Shutting down")
		return
	}

	activityLogger := core.NewActivityLogger(config.Activity)
	defer func() { _ = activityLogger.Close() }()

	handler, err := core.NewRouter(config, db, cache, activityLogger, eventsManager, translator, engine)
	if err != nil {
		zap.L().Fatal("Failed to build router", zap.Error(err))
	}
	if err = core.StartHTTPServer(ctx, config, handler); err != nil {
		zap.L().Error("HTTP server stopped", zap.Error(err))
	}
	zap.L().Info("Shutting down")
}
