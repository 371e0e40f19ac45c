// Package push delivers notifications to registered devices. Only
// subscriptions carrying the FCM marker are sent, through Firebase Cloud
// Messaging; web-push subscriptions are left to other channels.
package push

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/dalemusser/agendapro/internal/app/system/breaker"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var (
	// ErrInvalidToken marks a device token the provider rejected permanently.
	ErrInvalidToken = errors.New("push: invalid or unregistered device token")
	// ErrDisabled is returned when push credentials are not configured.
	ErrDisabled = errors.New("push: sender is not configured")
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// Message is one device-addressed push.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a single push message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Config selects the Firebase service account. CredentialsJSON wins over
// CredentialsFile.
type Config struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

func (c Config) Enabled() bool {
	return c.CredentialsFile != "" || c.CredentialsJSON != ""
}

// FCM sends through the Firebase Admin messaging client.
type FCM struct {
	client *messaging.Client
	cb     *gobreaker.CircuitBreaker[struct{}]
}

// NewSender returns an FCM sender, or Disabled when no credentials are configured.
func NewSender(ctx context.Context, cfg Config, log *zap.Logger) (Sender, error) {
	if !cfg.Enabled() {
		log.Warn("firebase credentials not configured; push delivery is disabled")
		return Disabled{}, nil
	}

	raw := []byte(cfg.CredentialsJSON)
	if len(raw) == 0 {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		raw = b
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse firebase credentials: %w", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}

	log.Info("fcm push sender ready", zap.String("project_id", projectID))
	return &FCM{
		client: client,
		cb: breaker.New(breaker.Config{
			Name: "fcm",
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrInvalidToken)
			},
		}, log),
	}, nil
}

func (f *FCM) Send(ctx context.Context, m Message) error {
	return breaker.Do(f.cb, func() error {
		_, err := f.client.Send(ctx, &messaging.Message{
			Token: m.Token,
			Notification: &messaging.Notification{
				Title: m.Title,
				Body:  m.Body,
			},
			Data: m.Data,
		})
		if err != nil && (messaging.IsUnregistered(err) ||
			(messaging.IsInvalidArgument(err) && validPayload(m))) {
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return err
	})
}

// IsInvalidToken reports whether err means the token will never work again.
// INVALID_ARGUMENT also covers payload problems, so it is not enough on its
// own; FCM.Send only maps it to ErrInvalidToken for a payload that is
// otherwise acceptable.
func IsInvalidToken(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidToken) || messaging.IsUnregistered(err)
}

// ValidData reports whether data carries no reserved keys and fits the
// payload limit, so a provider INVALID_ARGUMENT can only be the token.
func ValidData(data map[string]string) bool {
	for k := range data {
		if ReservedDataKey(k) {
			return false
		}
	}
	return dataSize(data) <= maxDataBytes
}

// fcmMaxBytes is the provider limit for one message payload.
const fcmMaxBytes = 4096

func validPayload(m Message) bool {
	return ValidData(m.Data) && len(m.Title)+len(m.Body)+dataSize(m.Data) <= fcmMaxBytes
}

// Disabled is the Sender used without credentials.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrDisabled }
