package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/order-tracker/internal/domain"
)

func setupTestDB(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func TestCreateOrder(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("Test", "", domain.StatusPending, int64(1), 1.0,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	order := &domain.Order{Title: "Test", UserID: 1, Price: 1.0}
	if err := s.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("CreateOrder() error: %v", err)
	}

	if order.ID != 7 {
		t.Errorf("order.ID = %d, want 7", order.ID)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("order.Status = %q, want pending", order.Status)
	}
	if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetOrder(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetOrder() = %v, want ErrNotFound", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.StatusDone, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpdateOrderStatus(context.Background(), 5, domain.StatusDone); err != nil {
		t.Fatalf("UpdateOrderStatus() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateOrderStatusMissingOrder(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.StatusDone, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateOrderStatus(context.Background(), 5, domain.StatusDone)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateOrderStatus() = %v, want ErrNotFound", err)
	}
}

func TestUpsertOrderKeepsExistingRow(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO orders .+ ON CONFLICT").
		WithArgs(int64(7), "Test", "", domain.StatusPending, int64(1), 1.0,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	order := &domain.Order{ID: 7, Title: "Test", Status: domain.StatusPending, UserID: 1, Price: 1.0}
	if err := s.UpsertOrder(context.Background(), order); err != nil {
		t.Fatalf("UpsertOrder() error: %v", err)
	}
}

func TestListOrdersByOwner(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "status", "user_id", "price", "created_at", "updated_at",
	}).
		AddRow(int64(2), "Second", "", "in_progress", int64(1), 2.0, now, now).
		AddRow(int64(1), "First", "desc", "pending", int64(1), 1.0, now, now)

	mock.ExpectQuery("SELECT .+ FROM orders WHERE user_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	orders, err := s.ListOrdersByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListOrdersByOwner() error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].ID != 2 || orders[1].ID != 1 {
		t.Errorf("unexpected order ids: %d, %d", orders[0].ID, orders[1].ID)
	}
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", true, false, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	user := &domain.User{Username: "alice", Email: "Alice@Example.COM", HashedPassword: "hash"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
}

func TestUsernameTaken(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := s.UsernameTaken(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("UsernameTaken() error: %v", err)
	}
	if !taken {
		t.Error("UsernameTaken() = false, want true")
	}
}

func TestDeactivateUser(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE users SET is_active").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeactivateUser(context.Background(), 3); err != nil {
		t.Fatalf("DeactivateUser() error: %v", err)
	}
}

func TestCreateNotification(t *testing.T) {
	s, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(int64(7), domain.NotificationCreate, "A new order has been created. Order ID=7", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	n := &domain.Notification{
		OrderID: 7,
		Type:    domain.NotificationCreate,
		Message: "A new order has been created. Order ID=7",
	}
	if err := s.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("CreateNotification() error: %v", err)
	}
	if n.ID != 1 {
		t.Errorf("n.ID = %d, want 1", n.ID)
	}
}
