package core

import (
	"fmt"

	"portal/internal/configuration"
	"portal/internal/messaging"
	"portal/internal/models"

	"go.uber.org/zap"
)

// EventsManager owns the publisher and subscriber of the notifications topic.
type EventsManager struct {
	publisher  messaging.IPublisher
	subscriber messaging.ISubscriber
	config     models.EventsConfiguration
}

// NewEventsManager connects to the configured provider. The subscriber is
// only created when this instance consumes notifications.
func NewEventsManager(config models.EventsConfiguration, subscribe bool) (*EventsManager, error) {
	manager := &EventsManager{config: config}

	switch config.Type {
	case configuration.ProviderJetstream:
		publisher, err := messaging.NewJetStreamPublisher(config.Jetstream, config.Topic)
		if err != nil {
			return nil, err
		}
		manager.publisher = publisher

		if subscribe {
			subscriber, err := messaging.NewJetStreamSubscriber(config.Jetstream, config.Topic)
			if err != nil {
				_ = publisher.Close()
				return nil, err
			}
			manager.subscriber = subscriber
		}
	case configuration.ProviderMemory:
		manager.publisher, manager.subscriber = messaging.NewMemoryPubSub(config.Topic)
	default:
		return nil, fmt.Errorf("unknown events provider %q", config.Type)
	}

	zap.L().Info("Initialized events",
		zap.String("topic", config.Topic),
		zap.String("provider", config.Type),
		zap.Bool("subscriber", manager.subscriber != nil))

	return manager, nil
}

func (em *EventsManager) GetPublisher() messaging.IPublisher {
	return em.publisher
}

func (em *EventsManager) GetSubscriber() messaging.ISubscriber {
	if em.subscriber == nil {
		zap.L().Warn("Subscriber not initialized", zap.String("topic", em.config.Topic))
	}
	return em.subscriber
}

func (em *EventsManager) Close() {
	if em.publisher != nil {
		if err := em.publisher.Close(); err != nil {
			zap.L().Error("Failed to close publisher", zap.String("topic", em.config.Topic), zap.Error(err))
		}
	}

	if em.subscriber != nil {
		if err := em.subscriber.Close(); err != nil {
			zap.L().Error("Failed to close subscriber", zap.String("topic", em.config.Topic), zap.Error(err))
		}
	}
}
