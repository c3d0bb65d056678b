package domain

// EventType discriminates order event payloads on the wire.
type EventType string

const (
	EventCreate EventType = "create"
	EventUpdate EventType = "update"
)

// Event is the tagged union of order lifecycle events. Events are immutable
// and carry no identity of their own; stream position comes from the broker.
type Event interface {
	Type() EventType
}

// OrderCreated is published after an order row has been committed. It embeds
// the full order payload so a consumer can re-apply it idempotently.
type OrderCreated struct {
	UserID int64
	Order  Order
}

func (OrderCreated) Type() EventType { return EventCreate }

// OrderStatusChanged is published after a legal status transition has been
// committed. PreviousStatus is the stored status the transition replaced.
type OrderStatusChanged struct {
	UserID         int64
	OrderID        int64
	Status         OrderStatus
	PreviousStatus OrderStatus
}

func (OrderStatusChanged) Type() EventType { return EventUpdate }
