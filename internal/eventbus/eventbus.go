// Package eventbus provides the watermill publisher/subscriber pair used for
// realtime match events. NATS backs it in production; an in-process go channel
// backs it when no NATS URL is configured.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus publishes and subscribes to topics.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewNATSEventBus connects a watermill publisher and subscriber to core NATS.
// Every subscriber receives every message, which is what the realtime fan-out needs.
func NewNATSEventBus(natsURL string, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Name("flashcard-frenzy"),
	}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: options,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaler,
			NatsOptions: options,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &eventBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

// NewInProcessEventBus returns a bus backed by a watermill go channel.
func NewInProcessEventBus(logger *slog.Logger) EventBus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &eventBus{publisher: ch, subscriber: ch, logger: logger}
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message", attr.String("topic", topic), attr.Error(err))
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	eb.logger.Debug("Message published", attr.String("topic", topic), attr.Int("count", len(messages)))
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	eb.logger.Info("Subscription started", attr.String("topic", topic))
	return messages, nil
}

func (eb *eventBus) Close() error {
	var errs []error
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	// the in-process bus uses one go channel for both sides
	if any(eb.subscriber) != any(eb.publisher) {
		if err := eb.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewMessage JSON-encodes payload into a watermill message carrying the
// correlation id of ctx and the given metadata.
func NewMessage(ctx context.Context, payload any, metadata map[string]string) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	correlationID := attr.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}
