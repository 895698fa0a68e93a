package messaging

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// MemoryBus is an in-process topic. It serves as both publisher and
// subscriber, so it only reaches consumers of the same process.
type MemoryBus struct {
	topic     string
	channel   *gochannel.GoChannel
	closeOnce sync.Once
	closeErr  error
}

func NewMemoryBus(topic string) *MemoryBus {
	channel := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, NewLogger(zap.L()))
	return &MemoryBus{topic: topic, channel: channel}
}

// NewMemoryPubSub returns both ends of a fresh MemoryBus.
func NewMemoryPubSub(topic string) (IPublisher, ISubscriber) {
	bus := NewMemoryBus(topic)
	return bus, bus
}

func (b *MemoryBus) Publish(messages ...*message.Message) error {
	return b.channel.Publish(b.topic, messages...)
}

func (b *MemoryBus) Subscribe() <-chan *message.Message {
	messages, err := b.channel.Subscribe(context.Background(), b.topic)
	if err != nil {
		zap.L().Error("Failed to subscribe to memory topic", zap.String("topic", b.topic), zap.Error(err))
		return nil
	}
	return messages
}

// Close may be called by both ends; only the first call closes the channel.
func (b *MemoryBus) Close() error {
	b.closeOnce.Do(func() { b.closeErr = b.channel.Close() })
	return b.closeErr
}
