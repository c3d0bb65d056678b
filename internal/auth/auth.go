// Package auth issues and verifies the bearer tokens used by the API and
// resolves them back to stored users.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/domain"
)

// UserResolver looks up an active user by username. Satisfied by
// *store.Store; narrowed to an interface so middleware tests can stub it.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Manager signs and parses HS256 access tokens carrying a username claim.
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
	users    UserResolver
}

// NewManager creates a token manager from config.
func NewManager(cfg config.AuthConfig, users UserResolver) *Manager {
	return &Manager{
		secret:   []byte(cfg.Secret),
		tokenTTL: cfg.TokenTTL(),
		users:    users,
	}
}

// CreateAccessToken issues a signed token for the user.
func (m *Manager) CreateAccessToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(m.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ResolveToken parses a bearer token and resolves it to the stored user.
// Every failure collapses to ErrUnauthenticated so callers respond 401
// without leaking which check failed.
func (m *Manager) ResolveToken(ctx context.Context, tokenString string) (*domain.User, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := m.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

type contextKey struct{}

var userKey contextKey

// CurrentUser returns the authenticated user stored by Middleware, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

// WithUser returns a context carrying the user, for handler tests.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Middleware authenticates "Authorization: Bearer <token>" and stores the
// resolved user in the request context. Requests without a valid token get
// 401 before reaching any handler.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing or invalid credentials"}`))
			return
		}

		user, err := m.ResolveToken(r.Context(), token)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing or invalid credentials"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
