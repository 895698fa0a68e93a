package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Task is one step of a periodic worker; Run reports how many rows it touched.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// RunEvery runs tasks once immediately and then at every interval until ctx
// is done.
func RunEvery(ctx context.Context, worker string, interval time.Duration, tasks ...Task) {
	logger := zap.L().With(zap.String("worker", worker))
	logger.Info("Starting worker", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		started := time.Now()
		counts := runTasks(ctx, logger, tasks)

		fields := []zap.Field{zap.Duration("duration", time.Since(started))}
		for name, count := range counts {
			fields = append(fields, zap.Int(name, count))
		}
		logger.Info("Worker cycle complete", fields...)

		select {
		case <-ctx.Done():
			logger.Info("Worker shutting down")
			return
		case <-ticker.C:
		}
	}
}

// runTasks runs every task in order; a failing task does not stop the next.
func runTasks(ctx context.Context, logger *zap.Logger, tasks []Task) map[string]int {
	counts := make(map[string]int, len(tasks))
	for _, task := range tasks {
		count, err := task.Run(ctx)
		if err != nil {
			logger.Error("Worker task failed", zap.String("task", task.Name), zap.Error(err))
		}
		counts[task.Name] = count
	}
	return counts
}
