package workers

import (
	"context"

	"portal/internal/events"
	"portal/internal/lang"
	"portal/internal/messaging"
	"portal/internal/notifier"

	"go.uber.org/zap"
)

// NotificationWorker turns the events of the notifications topic into e-mails.
type NotificationWorker struct {
	Subscriber messaging.ISubscriber
	Notifier   notifier.INotifier
	Translator lang.Translator
}

func (w *NotificationWorker) Start(ctx context.Context) {
	zap.L().Info("Starting worker", zap.String("worker", "notifications"))
	events.HandleNotifications(ctx, w.Subscriber, w.Notifier, w.Translator)
	zap.L().Info("Worker shutting down", zap.String("worker", "notifications"))
}
