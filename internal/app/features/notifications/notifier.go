// Package notifications creates in-app notifications and pushes them to the
// recipient's devices.
package notifications

import (
	"context"
	"fmt"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	notificationstore "github.com/dalemusser/agendapro/internal/app/store/notifications"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.uber.org/zap"
)

// Notifier stores notifications and fans them out over push.
type Notifier struct {
	Store *notificationstore.Store
	Push  *push.Dispatcher
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewNotifier(store *notificationstore.Store, dispatcher *push.Dispatcher, audit *auditlog.Logger, logger *zap.Logger) *Notifier {
	return &Notifier{Store: store, Push: dispatcher, Audit: audit, Log: logger}
}

// Notify stores n and dispatches it. Only the insert can fail; push problems
// are logged.
func (n *Notifier) Notify(ctx context.Context, note models.Notification) (models.Notification, error) {
	saved, err := n.Store.Create(ctx, note)
	if err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	if _, err := n.Dispatch(ctx, saved); err != nil {
		n.Log.Warn("push fan-out failed",
			zap.String("notification_id", saved.ID.Hex()),
			zap.Error(err))
	}
	return saved, nil
}

// Dispatch pushes an already-stored notification.
func (n *Notifier) Dispatch(ctx context.Context, note models.Notification) (push.Result, error) {
	if n.Push == nil {
		return push.Result{FailedTokens: []string{}}, nil
	}
	res, err := n.Push.Dispatch(ctx, note)
	if err != nil {
		return res, err
	}
	n.Audit.Record(ctx, auditlog.Event{
		GroupID:    note.GroupID,
		ProfileID:  auditlog.IDPtr(note.ProfileID),
		Action:     audit.ActionPushDispatched,
		EntityType: audit.EntityNotification,
		EntityID:   note.ID.Hex(),
		Details: map[string]any{
			"sent":          res.Sent,
			"failed":        res.Failed,
			"skipped":       res.Skipped,
			"failed_tokens": len(res.FailedTokens),
		},
	})
	return res, nil
}

// NotifyBestEffort is Notify for side effects that must never fail the caller.
func (n *Notifier) NotifyBestEffort(ctx context.Context, note models.Notification) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, note); err != nil {
		n.Log.Warn("notification not created",
			zap.String("kind", note.Kind),
			zap.String("profile_id", note.ProfileID.Hex()),
			zap.Error(err))
	}
}
