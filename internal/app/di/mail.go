package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"book_catalog/internal/platform/config"
	"book_catalog/internal/platform/mail"
)

// Mail is the outgoing mail stack.
type Mail struct {
	// Mailer is what usecases send through.
	Mailer mail.Mailer
	// Primary delivers directly and is what the outbox worker retries with.
	Primary mail.Mailer
	// Outbox is nil without Redis.
	Outbox *mail.RedisOutbox
}

// NewMail picks the delivery path for outgoing mail.
// Without SMTP settings mail is only logged. With Redis, failed sends are
// queued in an outbox for a worker to retry.
func NewMail(cfg config.SMTPConfig, rdb *redis.Client, logger *slog.Logger) (*Mail, error) {
	var primary mail.Mailer = mail.NewLogMailer(logger)
	if cfg.Enabled() {
		smtp, err := mail.NewSMTPMailer(cfg)
		if err != nil {
			return nil, err
		}
		primary = smtp
	} else {
		logger.Warn("SMTP is not configured; mail is written to the log only")
	}

	m := &Mail{Mailer: primary, Primary: primary}
	if rdb != nil {
		m.Outbox = mail.NewRedisOutbox(rdb, "mail")
		m.Mailer = mail.NewRetryingMailer(primary, m.Outbox)
	}
	return m, nil
}
