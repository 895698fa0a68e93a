package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portal/internal/configuration"
	"portal/internal/lang"
	"portal/internal/messaging"
	"portal/internal/notifier"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

func parse(msg *message.Message) (Event, error) {
	eventType := msg.Metadata.Get(metadataType)

	switch eventType {
	case configuration.EventPasswordResetRequested:
		var payload PasswordResetRequestedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", eventType, err)
		}
		return PasswordResetRequested{Payload: payload}, nil
	case configuration.EventPasswordResetCompleted:
		var payload PasswordResetCompletedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", eventType, err)
		}
		return PasswordResetCompleted{Payload: payload}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

const maxDeliveryAttempts = 5

var (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// retryDelay doubles with every failed attempt, up to retryMaxDelay.
func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempt && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	return min(delay, retryMaxDelay)
}

// HandleNotifications sends the e-mail of every message received until ctx
// is done or the subscription ends. Malformed messages are dropped. A failed
// delivery is nacked for redelivery after a growing delay and dropped once it
// has failed maxDeliveryAttempts times.
func HandleNotifications(
	ctx context.Context,
	subscriber messaging.ISubscriber,
	n notifier.INotifier,
	t lang.Translator,
) {
	messages := subscriber.Subscribe()
	if messages == nil {
		zap.L().Error("Notification subscription unavailable")
		return
	}

	failures := make(map[string]int)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				zap.L().Info("Notification subscription closed")
				return
			}
			handle(ctx, msg, n, t, failures)
		}
	}
}

func handle(
	ctx context.Context,
	msg *message.Message,
	n notifier.INotifier,
	t lang.Translator,
	failures map[string]int,
) {
	logger := zap.L().With(zap.String("message_id", msg.UUID))

	event, err := parse(msg)
	if err != nil {
		logger.Error("Dropping notification", zap.Error(err))
		msg.Ack()
		return
	}

	if err = event.callback(ctx, n, t); err != nil {
		failures[msg.UUID]++
		attempt := failures[msg.UUID]

		if attempt >= maxDeliveryAttempts {
			logger.Error("Giving up on notification", zap.Int("attempts", attempt), zap.Error(err))
			delete(failures, msg.UUID)
			msg.Ack()
			return
		}

		delay := retryDelay(attempt)
		logger.Warn("Failed to deliver notification",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		msg.Nack()
		return
	}

	delete(failures, msg.UUID)
	msg.Ack()
}
