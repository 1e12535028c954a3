// Package mail sends plain text email and retries failed sends through a Redis outbox.
package mail

import (
	"context"
	"log/slog"
	"time"
)

// Mailer sends a single plain text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Message is a queued email.
type Message struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	QueuedAt  time.Time `json:"queued_at"`
}

// LogMailer writes messages to the log instead of sending them.
// It is used when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "mail not sent, smtp disabled", "to", to, "subject", subject, "body", body)
	return nil
}
