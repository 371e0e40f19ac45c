// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/agendapro/internal/app/system/breaker"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is a single outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// ErrDisabled is returned when SMTP is not configured.
var ErrDisabled = errors.New("mailer: smtp is not configured")

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (port 465); otherwise opportunistic STARTTLS
	User     string
	Pass     string
	From     string
	FromName string
}

// Enabled reports whether enough settings are present to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTP sends through an SMTP relay with go-mail. Sends pass through a
// circuit breaker so a dead relay fails fast.
type SMTP struct {
	cfg Config
	log *zap.Logger
	cb  *gobreaker.CircuitBreaker[struct{}]
}

// New returns an SMTP sender, or a Disabled sender when cfg is incomplete.
func New(cfg Config, log *zap.Logger) Sender {
	if !cfg.Enabled() {
		log.Warn("smtp not configured; invitation emails are disabled")
		return Disabled{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{
		cfg: cfg,
		log: log,
		cb:  breaker.New(breaker.Config{Name: "smtp"}, log),
	}
}

func (s *SMTP) Send(ctx context.Context, e Email) error {
	msg := mail.NewMsg()
	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("set from: %w", err)
		}
	} else if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTMLBody)
	}

	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Pass),
		)
	}

	err := breaker.Do(s.cb, func() error {
		client, err := mail.NewClient(s.cfg.Host, opts...)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
		return client.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		metrics.RecordEmail("failed")
		return err
	}
	metrics.RecordEmail("sent")
	return nil
}

// Disabled is the Sender used when SMTP is not configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Email) error {
	metrics.RecordEmail("disabled")
	return ErrDisabled
}
