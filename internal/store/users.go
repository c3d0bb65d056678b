package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/order-tracker/internal/domain"
)

const userColumns = `id, username, email, hashed_password, is_active, is_superuser, is_verified, created_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword,
		&u.IsActive, &u.IsSuperuser, &u.IsVerified, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateUser persists a new user and fills in its assigned id. Username and
// email are normalized to lower case before storage.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()

	query := `INSERT INTO users (username, email, hashed_password, is_active, is_superuser, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.HashedPassword,
		u.IsActive, u.IsSuperuser, u.IsVerified, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves an active user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves an active user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = TRUE`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

// GetUserByEmail retrieves an active user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// ListUsers retrieves all active users.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword,
			&u.IsActive, &u.IsSuperuser, &u.IsVerified, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser persists changed username, email and password hash.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET username = $1, email = $2, hashed_password = $3 WHERE id = $4`

	res, err := s.db.ExecContext(ctx, query, u.Username, strings.ToLower(u.Email), u.HashedPassword, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateUser soft-deletes a user. The row is never removed so order
// ownership stays resolvable.
func (s *Store) DeactivateUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether an active user other than excludeID already
// holds the username.
func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND is_active = TRUE AND id <> $2)`
	if err := s.db.QueryRowContext(ctx, query, username, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("username taken: %w", err)
	}
	return exists, nil
}

// EmailTaken reports whether an active user other than excludeID already
// holds the email.
func (s *Store) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND is_active = TRUE AND id <> $2)`
	if err := s.db.QueryRowContext(ctx, query, strings.ToLower(email), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("email taken: %w", err)
	}
	return exists, nil
}
