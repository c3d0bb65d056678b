// Package notify builds notification emails for order events and delivers
// them over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/ignite/order-tracker/internal/config"
)

// Mailer delivers a single plain-text email synchronously.
type Mailer interface {
	Send(ctx context.Context, to, subject, message string) error
}

// SMTPMailer sends mail over a plain SMTP transport with PLAIN auth. Each
// send dials, authenticates, transmits one message and quits, so a failed
// connection never leaks into the next notification.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message. The context bounds the dial via a goroutine-free
// check before sending; net/smtp itself has no context hooks.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, message)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
