package events

import (
	"context"

	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// payloadField is the stream entry field holding the JSON event payload.
const payloadField = "payload"

// Producer publishes order events to a Redis Stream. A single stream keeps
// per-order publish order end to end.
//
// Publishing is fire-and-forget from the request path: by the time an event
// is published the store mutation has already committed and the client will
// receive success, so serialization and broker failures are logged and
// swallowed rather than propagated.
type Producer struct {
	client  *redis.Client
	stream  string
	timeout func(context.Context) (context.Context, context.CancelFunc)
}

// NewProducer creates a producer over an existing Redis client.
func NewProducer(client *redis.Client, cfg config.BrokerConfig) *Producer {
	return &Producer{
		client: client,
		stream: cfg.Stream,
		timeout: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, cfg.Timeout())
		},
	}
}

// Publish serializes the event and appends it to the stream, waiting for the
// broker ack. Each call acquires and releases one pooled connection.
func (p *Producer) Publish(ctx context.Context, e domain.Event) {
	data, err := Encode(e)
	if err != nil {
		logger.Error("event serialization failed", "type", string(e.Type()), "error", err)
		metrics.EventsPublishedTotal.WithLabelValues(string(e.Type()), "serialize_error").Inc()
		return
	}

	ctx, cancel := p.timeout(ctx)
	defer cancel()

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: string(data)},
	}).Result()
	if err != nil {
		logger.Error("event publish failed", "type", string(e.Type()), "error", err)
		metrics.EventsPublishedTotal.WithLabelValues(string(e.Type()), "broker_error").Inc()
		return
	}

	logger.Info("event published", "type", string(e.Type()), "stream", p.stream, "id", id)
	metrics.EventsPublishedTotal.WithLabelValues(string(e.Type()), "ok").Inc()
}
