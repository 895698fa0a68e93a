package workers

import (
	"context"
	"time"

	"portal/internal/sql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResetCleanupWorker periodically removes password resets nobody used in time.
type ResetCleanupWorker struct {
	DB          *gorm.DB
	RunInterval time.Duration

	now func() time.Time
}

func (w *ResetCleanupWorker) Start(ctx context.Context) {
	RunEvery(ctx, "reset_cleanup", w.RunInterval, Task{Name: "expired_resets", Run: w.cleanupExpiredResets})
}

func (w *ResetCleanupWorker) cleanupExpiredResets(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	if w.now != nil {
		now = w.now()
	}

	count, err := sql.DeleteExpiredResets(w.DB.WithContext(ctx), now)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		zap.L().Debug("Deleted expired password resets", zap.Int64("count", count))
	}

	return int(count), nil
}
