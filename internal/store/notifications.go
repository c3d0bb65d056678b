package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/order-tracker/internal/domain"
)

// CreateNotification records a delivered notification. Rows are written only
// by the event consumer after a successful send and are never mutated.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	n.CreatedAt = time.Now().UTC()

	query := `INSERT INTO notifications (order_id, type, message, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	err := s.db.QueryRowContext(ctx, query, n.OrderID, n.Type, n.Message, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotificationsByOrder retrieves the notifications recorded for an order.
func (s *Store) ListNotificationsByOrder(ctx context.Context, orderID int64) ([]*domain.Notification, error) {
	query := `SELECT id, order_id, type, message, created_at FROM notifications
		WHERE order_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Type, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
