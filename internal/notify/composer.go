package notify

import (
	"context"
	"fmt"

	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/pkg/logger"
)

// EmailComposer builds deterministic subject/body pairs for order events and
// hands them to a Mailer. It decides nothing about persistence; the consumer
// records a Notification only when the returned error is nil.
type EmailComposer struct {
	mailer Mailer
}

// NewEmailComposer creates a composer over the given transport.
func NewEmailComposer(mailer Mailer) *EmailComposer {
	return &EmailComposer{mailer: mailer}
}

// OrderCreated sends the order-creation notification and returns the message
// body that was delivered.
func (c *EmailComposer) OrderCreated(ctx context.Context, toEmail string, orderID int64) (string, error) {
	subject := fmt.Sprintf("New order ID=%d", orderID)
	message := fmt.Sprintf("A new order has been created. Order ID=%d", orderID)

	if err := c.mailer.Send(ctx, toEmail, subject, message); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(domain.NotificationCreate), "error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	logger.Info("order creation notification sent", "order_id", orderID, "email", toEmail)
	metrics.NotificationsTotal.WithLabelValues(string(domain.NotificationCreate), "ok").Inc()
	return message, nil
}

// OrderStatusUpdate sends the status-change notification and returns the
// message body that was delivered.
func (c *EmailComposer) OrderStatusUpdate(ctx context.Context, toEmail string, orderID int64, previous, current domain.OrderStatus) (string, error) {
	subject := fmt.Sprintf("Order ID=%d status update", orderID)
	message := fmt.Sprintf("Order status changed from %s to %s", previous, current)

	if err := c.mailer.Send(ctx, toEmail, subject, message); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(domain.NotificationUpdate), "error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	logger.Info("order status notification sent", "order_id", orderID, "email", toEmail)
	metrics.NotificationsTotal.WithLabelValues(string(domain.NotificationUpdate), "ok").Inc()
	return message, nil
}
