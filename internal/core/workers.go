package core

import (
	"context"
	"fmt"
	"time"

	c "portal/internal/cache"
	"portal/internal/configuration"
	"portal/internal/lang"
	"portal/internal/models"
	"portal/internal/notifier"
	"portal/internal/workers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartWorkers launches the background workers the profile enables.
func StartWorkers(
	ctx context.Context,
	profile models.Profile,
	eventsManager *EventsManager,
	db *gorm.DB,
	notify notifier.INotifier,
	translator lang.Translator,
	config models.Configuration,
	cache c.ICache,
	appIdentity string,
) {
	notifications := &workers.NotificationWorker{
		Subscriber: eventsManager.GetSubscriber(),
		Notifier:   notify,
		Translator: translator,
	}
	launch(ctx, profile.Workers.Notifications, "notifications", cache, appIdentity, notifications.Start)

	cleanup := &workers.ResetCleanupWorker{
		DB:          db,
		RunInterval: time.Duration(config.App.CleanupInterval) * time.Minute,
	}
	launch(ctx, profile.Workers.ResetCleanup, "reset_cleanup", cache, appIdentity, cleanup.Start)
}

func launch(
	ctx context.Context,
	mode models.WorkerMode,
	name string,
	cache c.ICache,
	appIdentity string,
	run func(context.Context),
) {
	switch mode {
	case models.WorkerModeAll:
		go run(ctx)
		zap.L().Info("Started worker", zap.String("worker", name))
	case models.WorkerModeSingleton:
		e := &election{
			cache:    cache,
			key:      fmt.Sprintf(configuration.CacheAppWorkerLockKey, name),
			identity: appIdentity,
			worker:   name,
			run:      run,
		}
		go e.loop(ctx, time.Duration(configuration.CacheAppWorkerLockRefresh)*time.Second)
	}
}

// election runs a singleton worker on whichever instance holds its cache
// lock, and stops it as soon as the lock cannot be refreshed.
type election struct {
	cache    c.ICache
	key      string
	identity string
	worker   string
	run      func(context.Context)
}

func (e *election) loop(ctx context.Context, refresh time.Duration) {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	var stop context.CancelFunc
	defer func() {
		if stop != nil {
			stop()
		}
	}()

	for {
		stop = e.step(ctx, stop)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// step acquires or refreshes the lock. It returns the cancel func of the
// running worker, or nil when this instance is not running it.
func (e *election) step(ctx context.Context, stop context.CancelFunc) context.CancelFunc {
	logger := zap.L().With(zap.String("worker", e.worker))

	if stop == nil {
		acquired, err := e.cache.TryAcquireLock(e.key, e.identity, configuration.CacheAppWorkerLockTTL)
		if err != nil {
			logger.Error("Failed to acquire worker lock", zap.Error(err))
			return nil
		}
		if !acquired {
			return nil
		}

		logger.Info("Acquired worker lock, starting worker")
		workerCtx, cancel := context.WithCancel(ctx)
		go e.run(workerCtx)
		return cancel
	}

	held, err := e.cache.RefreshLock(e.key, e.identity, configuration.CacheAppWorkerLockTTL)
	if err == nil && held {
		return stop
	}

	logger.Warn("Lost worker lock, stopping worker", zap.Error(err))
	stop()
	return nil
}
