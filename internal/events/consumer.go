package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// OrderStore is the slice of the store the consumer needs.
type OrderStore interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpsertOrder(ctx context.Context, o *domain.Order) error
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	CreateNotification(ctx context.Context, n *domain.Notification) error
}

// Composer builds and delivers the notification email for an event, returning
// the message text that was sent.
type Composer interface {
	OrderCreated(ctx context.Context, toEmail string, orderID int64) (string, error)
	OrderStatusUpdate(ctx context.Context, toEmail string, orderID int64, previous, current domain.OrderStatus) (string, error)
}

// Consumer reads order events from the stream under a shared consumer group
// and turns each one into a delivered notification.
//
// Handling is synchronous per message; the blocking read is the only
// suspension point. A message is acknowledged whether or not handling
// succeeded: a failed notification is logged and dropped after one attempt,
// and a poisoned payload must never stop the loop or be redelivered to a
// group peer. Scale-out is more worker processes in the same group, not
// intra-process parallelism.
type Consumer struct {
	client   *redis.Client
	store    OrderStore
	composer Composer

	stream   string
	group    string
	consumer string
	block    time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer creates a consumer over an existing Redis client. Each instance
// gets a unique consumer name within the group.
func NewConsumer(client *redis.Client, cfg config.BrokerConfig, store OrderStore, composer Composer) *Consumer {
	return &Consumer{
		client:   client,
		store:    store,
		composer: composer,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: fmt.Sprintf("consumer-%s", uuid.New().String()[:8]),
		block:    5 * time.Second,
	}
}

// Start subscribes to the stream under the consumer group and begins polling.
// It returns once the group subscription exists; polling continues in the
// background until Stop or ctx cancellation.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.mu.Unlock()

	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("create consumer group: %w", err)
	}

	logger.Info("consumer started",
		"stream", c.stream, "group", c.group, "consumer", c.consumer)

	go c.poll(ctx)
	return nil
}

// Stop ends polling and waits for the in-flight message, if any, to finish.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done
	logger.Info("consumer stopped", "consumer", c.consumer)
}

// poll blocks on the stream until a message arrives, handles it, acks it, and
// repeats until the context is cancelled.
func (c *Consumer) poll(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			logger.Error("poll failed", "stream", c.stream, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.handleMessage(ctx, msg)
				if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
					logger.Error("ack failed", "id", msg.ID, "error", err)
				}
			}
		}
	}
}

// handleMessage decodes and dispatches one stream entry. Any error or panic
// is contained here so the poll loop always continues with the next message.
func (c *Consumer) handleMessage(ctx context.Context, msg redis.XMessage) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling event", "id", msg.ID, "panic", fmt.Sprint(r))
		}
	}()

	payload, _ := msg.Values[payloadField].(string)
	event, err := Decode([]byte(payload))
	if err != nil {
		logger.Error("skipping malformed event", "id", msg.ID, "error", err)
		metrics.EventsConsumedTotal.WithLabelValues("unknown", "decode_error").Inc()
		return
	}

	switch ev := event.(type) {
	case domain.OrderCreated:
		err = c.handleCreated(ctx, ev)
	case domain.OrderStatusChanged:
		err = c.handleStatusChanged(ctx, ev)
	}
	if err != nil {
		logger.Error("event handling failed", "id", msg.ID, "type", string(event.Type()), "error", err)
		metrics.EventsConsumedTotal.WithLabelValues(string(event.Type()), "error").Inc()
		return
	}
	metrics.EventsConsumedTotal.WithLabelValues(string(event.Type()), "ok").Inc()
}

func (c *Consumer) handleCreated(ctx context.Context, ev domain.OrderCreated) error {
	user, err := c.store.GetUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("resolve user %d: %w", ev.UserID, err)
	}

	order := ev.Order
	order.UserID = user.ID
	if err := c.store.UpsertOrder(ctx, &order); err != nil {
		return err
	}
	logger.Info("order created", "order_id", order.ID, "user_id", user.ID)

	message, err := c.composer.OrderCreated(ctx, user.Email, order.ID)
	if err != nil {
		// One attempt only: the order itself is already durable, the
		// notification is best-effort.
		logger.Error("SMTP error", "order_id", order.ID, "error", err)
		return nil
	}

	return c.store.CreateNotification(ctx, &domain.Notification{
		OrderID: order.ID,
		Type:    domain.NotificationCreate,
		Message: message,
	})
}

func (c *Consumer) handleStatusChanged(ctx context.Context, ev domain.OrderStatusChanged) error {
	user, err := c.store.GetUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("resolve user %d: %w", ev.UserID, err)
	}

	if err := c.store.UpdateOrderStatus(ctx, ev.OrderID, ev.Status); err != nil {
		return fmt.Errorf("apply status to order %d: %w", ev.OrderID, err)
	}
	logger.Info("order status changed", "order_id", ev.OrderID, "user_id", user.ID,
		"from", string(ev.PreviousStatus), "to", string(ev.Status))

	message, err := c.composer.OrderStatusUpdate(ctx, user.Email, ev.OrderID, ev.PreviousStatus, ev.Status)
	if err != nil {
		logger.Error("SMTP error", "order_id", ev.OrderID, "error", err)
		return nil
	}

	return c.store.CreateNotification(ctx, &domain.Notification{
		OrderID: ev.OrderID,
		Type:    domain.NotificationUpdate,
		Message: message,
	})
}
