// Package api holds the HTTP request handlers: authenticate, authorize,
// mutate, publish, in that order. Responses always reflect the synchronous
// store mutation; notification delivery never changes a status code.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ignite/order-tracker/internal/auth"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/store"
)

// Publisher sends a domain event to the broker, fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event)
}

// Handlers provides the HTTP handlers for users and orders.
type Handlers struct {
	store    *store.Store
	tokens   *auth.Manager
	producer Publisher
}

// NewHandlers creates the handler set.
func NewHandlers(s *store.Store, tokens *auth.Manager, producer Publisher) *Handlers {
	return &Handlers{store: s, tokens: tokens, producer: producer}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the error taxonomy onto HTTP statuses. Forbidden is
// surfaced as such, never disguised as not-found.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "missing or invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN: no permission to perform this action")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
