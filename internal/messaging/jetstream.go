package messaging

import (
	"context"
	"fmt"
	"net"
	"time"

	"portal/internal/configuration"
	"portal/internal/models"

	wmjs "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/jetstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// ackWait bounds one mail delivery; after it JetStream redelivers the
// notification to another worker.
const ackWait = 30 * time.Second

func dialNATS(config *models.JetStreamEventsConfig, role string) (*nats.Conn, error) {
	conn, err := nats.Connect(
		net.JoinHostPort(config.Host, config.Port),
		nats.Name(configuration.AppName+"-"+role),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s:%s: %w", config.Host, config.Port, err)
	}
	return conn, nil
}

// consumerName is the durable consumer the watermill subscriber binds to.
func consumerName(topic string) string {
	return "watermill__" + topic
}

// ensureWorkQueue declares the stream and consumer of topic so that every
// notification is handed to exactly one worker.
func ensureWorkQueue(ctx context.Context, conn *nats.Conn, topic string) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to open JetStream: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      topic,
		Subjects:  []string{topic},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to declare stream %s: %w", topic, err)
	}

	_, err = stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:      consumerName(topic),
		AckPolicy: jetstream.AckExplicitPolicy,
		AckWait:   ackWait,
	})
	if err != nil {
		return fmt.Errorf("failed to declare consumer on %s: %w", topic, err)
	}
	return nil
}

type jetStreamPublisher struct {
	topic     string
	conn      *nats.Conn
	publisher *wmjs.Publisher
}

func NewJetStreamPublisher(config *models.JetStreamEventsConfig, topic string) (IPublisher, error) {
	conn, err := dialNATS(config, "publisher")
	if err != nil {
		return nil, err
	}

	publisher, err := wmjs.NewPublisher(wmjs.PublisherConfig{Conn: conn, Logger: NewLogger(zap.L())})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
	}
	return &jetStreamPublisher{topic: topic, conn: conn, publisher: publisher}, nil
}

func (p *jetStreamPublisher) Publish(messages ...*message.Message) error {
	return p.publisher.Publish(p.topic, messages...)
}

func (p *jetStreamPublisher) Close() error {
	defer p.conn.Close()
	return p.publisher.Close()
}

type jetStreamSubscriber struct {
	topic      string
	conn       *nats.Conn
	subscriber *wmjs.Subscriber
}

func NewJetStreamSubscriber(config *models.JetStreamEventsConfig, topic string) (ISubscriber, error) {
	conn, err := dialNATS(config, "subscriber")
	if err != nil {
		return nil, err
	}

	if err = ensureWorkQueue(context.Background(), conn, topic); err != nil {
		conn.Close()
		return nil, err
	}

	var configurator wmjs.ConsumerConfigurator
	subscriber, err := wmjs.NewSubscriber(wmjs.SubscriberConfig{
		Conn:                conn,
		AckWaitTimeout:      ackWait,
		ResourceInitializer: wmjs.ExistingConsumer(configurator, ""),
		Logger:              NewLogger(zap.L()),
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream subscriber: %w", err)
	}

	zap.L().Info("Subscribed to JetStream", zap.String("stream", topic), zap.String("consumer", consumerName(topic)))
	return &jetStreamSubscriber{topic: topic, conn: conn, subscriber: subscriber}, nil
}

func (s *jetStreamSubscriber) Subscribe() <-chan *message.Message {
	messages, err := s.subscriber.Subscribe(context.Background(), s.topic)
	if err != nil {
		zap.L().Error("Failed to subscribe to JetStream", zap.String("topic", s.topic), zap.Error(err))
		return nil
	}
	return messages
}

func (s *jetStreamSubscriber) Close() error {
	defer s.conn.Close()
	return s.subscriber.Close()
}
