package mail

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/ratelimiter"
)

// Outbox queues messages for a later delivery attempt.
type Outbox interface {
	Enqueue(ctx context.Context, m Message) error
	Dequeue(ctx context.Context) (*Message, error)
	Bury(ctx context.Context, m Message) error
}

// RetryingMailer tries the primary mailer once and queues the message on failure.
// A failure is only returned when the message could not be queued either.
type RetryingMailer struct {
	primary Mailer
	outbox  Outbox
}

// NewRetryingMailer creates a RetryingMailer that parks failed messages in outbox.
func NewRetryingMailer(primary Mailer, outbox Outbox) *RetryingMailer {
	return &RetryingMailer{primary: primary, outbox: outbox}
}

func (m *RetryingMailer) Send(ctx context.Context, to, subject, body string) error {
	err := m.primary.Send(ctx, to, subject, body)
	if err == nil {
		return nil
	}
	logging.FromContext(ctx).Warn("mail send failed, queued for retry", "to", to, "error", err)

	qerr := m.outbox.Enqueue(ctx, Message{
		To:        to,
		Subject:   subject,
		Body:      body,
		Attempts:  1,
		LastError: err.Error(),
	})
	if qerr != nil {
		return errors.Join(err, qerr)
	}
	return nil
}

// Worker drains the outbox, pacing sends with a limiter.
type Worker struct {
	outbox       Outbox
	sender       Mailer
	limiter      ratelimiter.Limiter
	maxAttempts  int
	pollInterval time.Duration
}

// NewWorker creates a Worker. Messages are dropped after maxAttempts failures.
func NewWorker(outbox Outbox, sender Mailer, limiter ratelimiter.Limiter, maxAttempts int) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		outbox:       outbox,
		sender:       sender,
		limiter:      limiter,
		maxAttempts:  maxAttempts,
		pollInterval: 2 * time.Second,
	}
}

// Outcome describes what ProcessOne did.
type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeDelivered
	OutcomeRequeued
	OutcomeBuried
)

// Run processes messages until ctx is cancelled. It only waits between
// messages when the queue is empty or the last attempt failed.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("mail outbox worker started", "max_attempts", w.maxAttempts)
	defer slog.Info("mail outbox worker stopped")

	for {
		outcome, err := w.ProcessOne(ctx)
		if err != nil && ctx.Err() == nil {
			slog.Error("mail outbox processing failed", "error", err)
		}
		if outcome == OutcomeDelivered {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// ProcessOne makes one delivery attempt for the oldest queued message.
func (w *Worker) ProcessOne(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeEmpty, err
	}
	m, err := w.outbox.Dequeue(ctx)
	if err != nil || m == nil {
		return OutcomeEmpty, err
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			// Put it back so shutdown does not lose it.
			return OutcomeRequeued, errors.Join(err, w.outbox.Enqueue(context.WithoutCancel(ctx), *m))
		}
	}

	sendErr := w.sender.Send(ctx, m.To, m.Subject, m.Body)
	if sendErr == nil {
		slog.Info("queued mail delivered", "to", m.To, "attempts", m.Attempts+1)
		return OutcomeDelivered, nil
	}

	m.Attempts++
	m.LastError = sendErr.Error()
	if m.Attempts >= w.maxAttempts {
		slog.Error("mail retries exhausted", "to", m.To, "attempts", m.Attempts, "error", sendErr)
		return OutcomeBuried, w.outbox.Bury(ctx, *m)
	}
	slog.Warn("mail retry failed", "to", m.To, "attempts", m.Attempts, "error", sendErr)
	return OutcomeRequeued, w.outbox.Enqueue(ctx, *m)
}
