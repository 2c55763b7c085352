package matchrealtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/events"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// EventRouter forwards every match event from the bus to the hub.
type EventRouter struct {
	Router *message.Router
	hub    *Hub
	logger *slog.Logger
}

// sharedSubscriber keeps the router from closing a bus it does not own.
type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }

// NewEventRouter registers one handler per topic in events.Topics. registry
// may be nil to skip router metrics.
func NewEventRouter(logger *slog.Logger, subscriber message.Subscriber, hub *Hub, registry prometheus.Registerer) (*EventRouter, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	if registry != nil {
		metrics.NewPrometheusMetricsBuilder(registry, "frenzy", "realtime").AddPrometheusRouterMetrics(router)
	}

	r := &EventRouter{Router: router, hub: hub, logger: logger}
	sub := sharedSubscriber{subscriber}
	for _, topic := range events.Topics {
		router.AddNoPublisherHandler("realtime."+topic, topic, sub, r.forward(topic))
	}
	return r, nil
}

// Run blocks until ctx is done or Close is called.
func (r *EventRouter) Run(ctx context.Context) error {
	return r.Router.Run(ctx)
}

// Running is closed once every handler subscribed.
func (r *EventRouter) Running() chan struct{} {
	return r.Router.Running()
}

func (r *EventRouter) Close() error {
	return r.Router.Close()
}

// forward acks malformed messages so they are not redelivered.
func (r *EventRouter) forward(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		matchID, err := uuid.Parse(msg.Metadata.Get(events.MetadataMatchID))
		if err != nil {
			r.logger.Warn("Realtime event without match id",
				attr.String("topic", topic),
				attr.String("message_id", msg.UUID),
			)
			return nil
		}

		frame, err := json.Marshal(Frame{Type: topic, Payload: json.RawMessage(msg.Payload)})
		if err != nil {
			r.logger.Warn("Realtime event with invalid payload",
				attr.String("topic", topic),
				attr.UUID("match_id", matchID),
				attr.Error(err),
			)
			return nil
		}

		n := r.hub.Broadcast(matchID, frame)
		r.logger.Debug("Realtime event forwarded",
			attr.String("topic", topic),
			attr.UUID("match_id", matchID),
			attr.String("correlation_id", middleware.MessageCorrelationID(msg)),
			attr.Int("clients", n),
		)
		return nil
	}
}
