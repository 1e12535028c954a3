package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"book_catalog/internal/platform/config"
)

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates a mailer for the configured relay.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
