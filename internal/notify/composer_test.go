package notify

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/ignite/order-tracker/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type sentMail struct {
	to      string
	subject string
	message string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, message: message})
	return nil
}

func TestOrderCreatedMessage(t *testing.T) {
	mailer := &fakeMailer{}
	c := NewEmailComposer(mailer)

	msg, err := c.OrderCreated(context.Background(), "alice@example.com", 7)
	if err != nil {
		t.Fatalf("OrderCreated() error: %v", err)
	}

	want := "A new order has been created. Order ID=7"
	if msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@example.com" {
		t.Errorf("to = %q", mailer.sent[0].to)
	}
	if mailer.sent[0].subject != "New order ID=7" {
		t.Errorf("subject = %q", mailer.sent[0].subject)
	}
	if mailer.sent[0].message != want {
		t.Errorf("delivered body = %q, want %q", mailer.sent[0].message, want)
	}
}

func TestOrderStatusUpdateMessage(t *testing.T) {
	mailer := &fakeMailer{}
	c := NewEmailComposer(mailer)

	msg, err := c.OrderStatusUpdate(context.Background(), "alice@example.com", 7,
		domain.StatusPending, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("OrderStatusUpdate() error: %v", err)
	}

	want := "Order status changed from pending to in_progress"
	if msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].subject != "Order ID=7 status update" {
		t.Errorf("unexpected mail: %+v", mailer.sent)
	}
}

func TestComposerWrapsDeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("connection refused")}
	c := NewEmailComposer(mailer)

	if _, err := c.OrderCreated(context.Background(), "alice@example.com", 7); !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Errorf("OrderCreated() = %v, want ErrDeliveryFailed", err)
	}
	if _, err := c.OrderStatusUpdate(context.Background(), "alice@example.com", 7,
		domain.StatusPending, domain.StatusDone); !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Errorf("OrderStatusUpdate() = %v, want ErrDeliveryFailed", err)
	}
}

func TestSMTPMailerHonorsCancelledContext(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{
		Host: "localhost", Port: 2525,
		Username: "mailer@example.com", From: "mailer@example.com",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Send(ctx, "alice@example.com", "subject", "body"); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() = %v, want context.Canceled", err)
	}
}
