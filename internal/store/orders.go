package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/order-tracker/internal/domain"
)

const orderColumns = `id, title, description, status, user_id, price, created_at, updated_at`

func scanOrder(row *sql.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Status,
		&o.UserID, &o.Price, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

// CreateOrder persists a new order and fills in its assigned id and
// timestamps.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = domain.StatusPending
	}

	query := `INSERT INTO orders (title, description, status, user_id, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := s.db.QueryRowContext(ctx, query, o.Title, o.Description, o.Status,
		o.UserID, o.Price, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// UpsertOrder inserts an order under its existing id, doing nothing if the
// row is already present. The consumer re-applies create events through this
// so redelivered messages stay idempotent.
func (s *Store) UpsertOrder(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}

	query := `INSERT INTO orders (id, title, description, status, user_id, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, o.ID, o.Title, o.Description, o.Status,
		o.UserID, o.Price, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by id.
func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.db.QueryRowContext(ctx, query, id))
}

// ListOrders retrieves all orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return s.queryOrders(ctx, query)
}

// ListOrdersByOwner retrieves the orders owned by one user, newest first.
func (s *Store) ListOrdersByOwner(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return s.queryOrders(ctx, query, userID)
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o := &domain.Order{}
		err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.Status,
			&o.UserID, &o.Price, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus persists a status change and stamps updated_at.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	res, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
