package push

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	pushsubstore "github.com/dalemusser/agendapro/internal/app/store/pushsubs"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.uber.org/zap"
)

// Result summarizes one fan-out.
type Result struct {
	Sent         int      `json:"sent"`
	Failed       int      `json:"failed"`
	Skipped      int      `json:"skipped"`
	FailedTokens []string `json:"failedTokens"`
}

// Dispatcher fans a notification out to the recipient's active subscriptions.
type Dispatcher struct {
	Subs   *pushsubstore.Store
	Sender Sender
	Log    *zap.Logger
}

func NewDispatcher(subs *pushsubstore.Store, sender Sender, log *zap.Logger) *Dispatcher {
	if sender == nil {
		sender = Disabled{}
	}
	return &Dispatcher{Subs: subs, Sender: sender, Log: log}
}

// Dispatch sends n to every active FCM subscription of n.ProfileID.
// Subscriptions without the FCM marker are skipped. A rejected token
// deactivates its subscription. Only the subscription lookup can fail the call.
func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification) (Result, error) {
	res := Result{FailedTokens: []string{}}

	subs, err := d.Subs.ListActiveByProfile(ctx, n.ProfileID)
	if err != nil {
		return res, fmt.Errorf("list push subscriptions: %w", err)
	}

	msg := Message{
		Title: n.Title,
		Body:  n.Body,
		Data:  messageData(n),
	}

	for _, sub := range subs {
		if !sub.IsFCM() {
			res.Skipped++
			metrics.RecordPush("skipped")
			continue
		}

		msg.Token = sub.Endpoint
		err := d.Sender.Send(ctx, msg)
		switch {
		case err == nil:
			res.Sent++
			metrics.RecordPush("sent")
			if terr := d.Subs.TouchLastUsed(ctx, sub.ID, time.Now().UTC()); terr != nil {
				d.Log.Warn("failed to stamp push subscription", zap.Error(terr),
					zap.String("subscription_id", sub.ID.Hex()))
			}
		case errors.Is(err, ErrDisabled):
			res.Skipped++
			metrics.RecordPush("skipped")
		case IsInvalidToken(err):
			res.Failed++
			res.FailedTokens = append(res.FailedTokens, sub.Endpoint)
			metrics.RecordPush("invalid_token")
			if derr := d.Subs.Deactivate(ctx, sub.ID); derr != nil {
				d.Log.Warn("failed to deactivate push subscription", zap.Error(derr),
					zap.String("subscription_id", sub.ID.Hex()))
			}
		default:
			res.Failed++
			metrics.RecordPush("failed")
			d.Log.Warn("push send failed", zap.Error(err),
				zap.String("subscription_id", sub.ID.Hex()),
				zap.String("notification_id", n.ID.Hex()))
		}
	}

	d.Log.Info("push fan-out complete",
		zap.String("notification_id", n.ID.Hex()),
		zap.String("profile_id", n.ProfileID.Hex()),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// maxDataBytes keeps the data payload under the FCM 4 KB message limit,
// leaving room for the notification title and body.
const maxDataBytes = 3072

func messageData(n models.Notification) map[string]string {
	data := map[string]string{
		"notificationId": n.ID.Hex(),
		"kind":           n.Kind,
		"entityType":     n.EntityType,
		"entityId":       n.EntityID,
	}
	if n.GroupID != nil {
		data["groupId"] = n.GroupID.Hex()
	}
	size := dataSize(data)
	keys := make([]string, 0, len(n.Metadata))
	for k := range n.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := n.Metadata[k]
		if _, taken := data[k]; taken || ReservedDataKey(k) {
			continue
		}
		if size+len(k)+len(v) > maxDataBytes {
			continue
		}
		data[k] = v
		size += len(k) + len(v)
	}
	return data
}

func dataSize(data map[string]string) int {
	n := 0
	for k, v := range data {
		n += len(k) + len(v)
	}
	return n
}

// ReservedDataKey reports whether FCM rejects k as a data payload key.
func ReservedDataKey(k string) bool {
	lk := strings.ToLower(k)
	switch lk {
	case "", "from", "message_type", "notification", "collapse_key":
		return true
	}
	return strings.HasPrefix(lk, "google") || strings.HasPrefix(lk, "gcm")
}
