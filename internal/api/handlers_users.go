package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/order-tracker/internal/auth"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/metrics"
	"github.com/ignite/order-tracker/internal/pkg/logger"
	"github.com/ignite/order-tracker/internal/policy"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

func validateRegistration(req registerRequest) error {
	if req.Username == "" || len(req.Username) > 320 {
		return fmt.Errorf("%w: username must be 1-320 characters", domain.ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("%w: malformed email", domain.ErrValidation)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	return nil
}

// Register creates a user account. Username and email must be unique among
// active users; collisions are conflicts, not validation failures.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateRegistration(req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		respondDomainError(w, err)
		return
	}

	if taken, err := h.store.UsernameTaken(r.Context(), req.Username, 0); err != nil {
		respondDomainError(w, err)
		return
	} else if taken {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		respondDomainError(w, fmt.Errorf("%w: username %q is already registered", domain.ErrConflict, req.Username))
		return
	}
	if taken, err := h.store.EmailTaken(r.Context(), req.Email, 0); err != nil {
		respondDomainError(w, err)
		return
	} else if taken {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		respondDomainError(w, fmt.Errorf("%w: email %q is already registered", domain.ErrConflict, req.Email))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &domain.User{Username: req.Username, Email: req.Email, HashedPassword: hash}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}

	logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and issues an access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	token, err := h.tokens.CreateAccessToken(user.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// ListUsers returns all active users. Superuser only.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentUser(r.Context())
	if err := policy.CheckUserAccess(actor, 0, true); err != nil {
		respondDomainError(w, err)
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, out)
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad user id", domain.ErrValidation)
	}
	return id, nil
}

// GetUser returns one user. Accessible to that user and to superusers.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	actor := auth.CurrentUser(r.Context())
	if err := policy.CheckUserAccess(actor, user.ID, false); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUser changes username, email or password for a user. Accessible to
// that user and to superusers; uniqueness checks exclude the user itself.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	actor := auth.CurrentUser(r.Context())
	if err := policy.CheckUserAccess(actor, user.ID, false); err != nil {
		respondDomainError(w, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username != "" {
		if taken, err := h.store.UsernameTaken(r.Context(), req.Username, user.ID); err != nil {
			respondDomainError(w, err)
			return
		} else if taken {
			respondDomainError(w, fmt.Errorf("%w: username %q is already registered", domain.ErrConflict, req.Username))
			return
		}
		user.Username = req.Username
	}
	if req.Email != "" {
		if !emailPattern.MatchString(req.Email) {
			respondDomainError(w, fmt.Errorf("%w: malformed email", domain.ErrValidation))
			return
		}
		if taken, err := h.store.EmailTaken(r.Context(), req.Email, user.ID); err != nil {
			respondDomainError(w, err)
			return
		} else if taken {
			respondDomainError(w, fmt.Errorf("%w: email %q is already registered", domain.ErrConflict, req.Email))
			return
		}
		user.Email = req.Email
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			respondDomainError(w, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation))
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.HashedPassword = hash
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser soft-deletes a user account. Superuser only.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	actor := auth.CurrentUser(r.Context())
	if err := policy.CheckUserAccess(actor, 0, true); err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.store.DeactivateUser(r.Context(), user.ID); err != nil {
		respondDomainError(w, err)
		return
	}
	logger.Info("user deactivated", "user_id", user.ID, "by", actor.ID)
	respondJSON(w, http.StatusOK, toUserResponse(user))
}
