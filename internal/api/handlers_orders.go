package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/order-tracker/internal/auth"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/pkg/logger"
	"github.com/ignite/order-tracker/internal/policy"
	"github.com/samber/lo"
)

type createOrderRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      domain.OrderStatus `json:"status,omitempty"`
	Price       float64            `json:"price"`
}

type updateOrderRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type orderResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      domain.OrderStatus `json:"status"`
	UserID      int64              `json:"user_id"`
	Price       float64            `json:"price"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Status:      o.Status,
		UserID:      o.UserID,
		Price:       o.Price,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func validateOrder(req createOrderRequest) error {
	if len(req.Title) < 1 || len(req.Title) > 100 {
		return fmt.Errorf("%w: title must be 1-100 characters", domain.ErrValidation)
	}
	if len(req.Description) > 255 {
		return fmt.Errorf("%w: description must be at most 255 characters", domain.ErrValidation)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if req.Status != "" && !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status)
	}
	return nil
}

// CreateOrder persists a new order for the authenticated user and publishes
// the create event. The response reflects the committed row; publish failures
// are logged inside the producer and never reach the client.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentUser(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateOrder(req); err != nil {
		respondDomainError(w, err)
		return
	}

	order := &domain.Order{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Price:       req.Price,
		UserID:      actor.ID,
	}
	if err := h.store.CreateOrder(r.Context(), order); err != nil {
		respondDomainError(w, err)
		return
	}

	// Publish only after the commit above; the mutation is durable whatever
	// happens on the broker side.
	h.producer.Publish(r.Context(), domain.OrderCreated{UserID: actor.ID, Order: *order})

	logger.Info("order accepted", "order_id", order.ID, "user_id", actor.ID)
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

// ListOrders returns all orders for superusers, own orders otherwise.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentUser(r.Context())

	var (
		orders []*domain.Order
		err    error
	)
	if actor.IsSuperuser {
		orders, err = h.store.ListOrders(r.Context())
	} else {
		orders, err = h.store.ListOrdersByOwner(r.Context(), actor.ID)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, lo.Map(orders, func(o *domain.Order, _ int) orderResponse {
		return toOrderResponse(o)
	}))
}

// UpdateOrderStatus validates the transition against stored state, persists
// it and publishes the update event. Rejected transitions never publish.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentUser(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondDomainError(w, fmt.Errorf("%w: bad order id", domain.ErrValidation))
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := policy.ValidateTransition(order, req.Status, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	previous := order.Status
	if err := h.store.UpdateOrderStatus(r.Context(), order.ID, req.Status); err != nil {
		respondDomainError(w, err)
		return
	}
	order.Status = req.Status
	order.UpdatedAt = time.Now().UTC()

	h.producer.Publish(r.Context(), domain.OrderStatusChanged{
		UserID:         actor.ID,
		OrderID:        order.ID,
		Status:         req.Status,
		PreviousStatus: previous,
	})

	logger.Info("order status updated", "order_id", order.ID, "user_id", actor.ID,
		"from", string(previous), "to", string(req.Status))
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}
