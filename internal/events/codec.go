// Package events carries order mutations across the broker boundary: a
// strict JSON codec, a producer that publishes to a Redis Stream, and a
// consumer group worker that turns events into notifications.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/ignite/order-tracker/internal/domain"
)

// envelope is the wire shape shared by both event kinds. Unused fields stay
// empty; Decode validates per type.
type envelope struct {
	Type           domain.EventType   `json:"type"`
	UserID         int64              `json:"user_id"`
	OrderData      *domain.Order      `json:"order_data,omitempty"`
	OrderID        int64              `json:"order_id,omitempty"`
	Status         domain.OrderStatus `json:"status,omitempty"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
}

// Encode serializes an event to its self-describing JSON payload.
func Encode(e domain.Event) ([]byte, error) {
	var env envelope
	switch ev := e.(type) {
	case domain.OrderCreated:
		order := ev.Order
		env = envelope{Type: domain.EventCreate, UserID: ev.UserID, OrderData: &order}
	case domain.OrderStatusChanged:
		env = envelope{
			Type:           domain.EventUpdate,
			UserID:         ev.UserID,
			OrderID:        ev.OrderID,
			Status:         ev.Status,
			PreviousStatus: ev.PreviousStatus,
		}
	default:
		return nil, fmt.Errorf("%w: unknown event %T", domain.ErrBadEvent, e)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadEvent, err)
	}
	return data, nil
}

// Decode parses a payload back into its event variant. Any malformed or
// incomplete payload yields ErrBadEvent so the consumer can log and skip it
// instead of guessing at missing fields.
func Decode(data []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadEvent, err)
	}

	switch env.Type {
	case domain.EventCreate:
		if env.OrderData == nil {
			return nil, fmt.Errorf("%w: create event without order_data", domain.ErrBadEvent)
		}
		if env.UserID == 0 {
			return nil, fmt.Errorf("%w: create event without user_id", domain.ErrBadEvent)
		}
		if !env.OrderData.Status.Valid() {
			return nil, fmt.Errorf("%w: bad status %q", domain.ErrBadEvent, env.OrderData.Status)
		}
		return domain.OrderCreated{UserID: env.UserID, Order: *env.OrderData}, nil

	case domain.EventUpdate:
		if env.OrderID == 0 || env.UserID == 0 {
			return nil, fmt.Errorf("%w: update event without order_id or user_id", domain.ErrBadEvent)
		}
		if !env.Status.Valid() || !env.PreviousStatus.Valid() {
			return nil, fmt.Errorf("%w: bad status transition %q -> %q",
				domain.ErrBadEvent, env.PreviousStatus, env.Status)
		}
		return domain.OrderStatusChanged{
			UserID:         env.UserID,
			OrderID:        env.OrderID,
			Status:         env.Status,
			PreviousStatus: env.PreviousStatus,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrBadEvent, env.Type)
	}
}
