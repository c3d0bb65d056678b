package events

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ignite/order-tracker/internal/domain"
)

func TestCodecRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name  string
		event domain.Event
	}{
		{
			"order created",
			domain.OrderCreated{
				UserID: 1,
				Order: domain.Order{
					ID:          7,
					Title:       "Test",
					Description: "a widget",
					Status:      domain.StatusPending,
					UserID:      1,
					Price:       1.0,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
			},
		},
		{
			"order status changed",
			domain.OrderStatusChanged{
				UserID:         2,
				OrderID:        7,
				Status:         domain.StatusDone,
				PreviousStatus: domain.StatusInProgress,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.event)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if diff := cmp.Diff(tt.event, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeCarriesDiscriminator(t *testing.T) {
	data, err := Encode(domain.OrderStatusChanged{
		UserID:         1,
		OrderID:        5,
		Status:         domain.StatusDone,
		PreviousStatus: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Type() != domain.EventUpdate {
		t.Errorf("Type() = %q, want %q", got.Type(), domain.EventUpdate)
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"unknown type", `{"type":"delete","user_id":1,"order_id":5}`},
		{"missing type", `{"user_id":1,"order_id":5,"status":"done"}`},
		{"create without order_data", `{"type":"create","user_id":1}`},
		{"create without user_id", `{"type":"create","order_data":{"id":1,"title":"t","status":"pending","price":1}}`},
		{"create with bad status", `{"type":"create","user_id":1,"order_data":{"id":1,"title":"t","status":"shipped","price":1}}`},
		{"update without order_id", `{"type":"update","user_id":1,"status":"done","previous_status":"pending"}`},
		{"update with bad transition", `{"type":"update","user_id":1,"order_id":5,"status":"done","previous_status":"unknown"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if !errors.Is(err, domain.ErrBadEvent) {
				t.Errorf("Decode() = %v, want ErrBadEvent", err)
			}
		})
	}
}
