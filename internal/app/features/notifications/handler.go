package notifications

import (
	"errors"
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Notifier *Notifier
	Log      *zap.Logger
}

func NewHandler(n *Notifier, logger *zap.Logger) *Handler {
	return &Handler{Notifier: n, Log: logger}
}

// pushRequest names a stored notification either by id or by its full
// document. When both are given the id wins.
type pushRequest struct {
	NotificationID string               `json:"notificationId" validate:"omitempty,objectid"`
	Notification   *notificationPayload `json:"notification" validate:"omitempty"`
}

type notificationPayload struct {
	ID         string            `json:"id" validate:"required,objectid"`
	GroupID    string            `json:"groupId" validate:"omitempty,objectid"`
	ProfileID  string            `json:"profileId" validate:"required,objectid"`
	Kind       string            `json:"kind" validate:"required"`
	Title      string            `json:"title" validate:"required"`
	Body       string            `json:"body"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Metadata   map[string]string `json:"metadata"`
}

func (p notificationPayload) model() models.Notification {
	n := models.Notification{
		ID:         validation.ObjectID(p.ID),
		ProfileID:  validation.ObjectID(p.ProfileID),
		Kind:       p.Kind,
		Title:      p.Title,
		Body:       p.Body,
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Metadata:   p.Metadata,
		Enabled:    true,
	}
	if p.GroupID != "" {
		gid := validation.ObjectID(p.GroupID)
		n.GroupID = &gid
	}
	return n
}

type pushResponse struct {
	OK bool `json:"ok"`
	push.Result
}

// HandlePush handles POST /api/notifications/push.
func (h *Handler) HandlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := validation.Bind(r, &req); err != nil {
		metrics.RecordWorkflow("push", metrics.OutcomeRejected)
		respond.Error(w, h.Log, err)
		return
	}
	if req.NotificationID == "" && req.Notification == nil {
		metrics.RecordWorkflow("push", metrics.OutcomeRejected)
		respond.Error(w, h.Log, apierr.BadRequest("notificationId or notification is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "push fan-out")
	defer cancel()

	var note models.Notification
	if req.NotificationID != "" {
		n, err := h.Notifier.Store.GetByID(ctx, validation.ObjectID(req.NotificationID))
		if errors.Is(err, mongo.ErrNoDocuments) {
			metrics.RecordWorkflow("push", metrics.OutcomeRejected)
			respond.Error(w, h.Log, apierr.NotFound("notification not found"))
			return
		}
		if err != nil {
			metrics.RecordWorkflow("push", metrics.OutcomeFailed)
			respond.Error(w, h.Log, apierr.Internal("failed to load notification", err))
			return
		}
		note = n
	} else {
		note = req.Notification.model()
	}

	res, err := h.Notifier.Dispatch(ctx, note)
	if err != nil {
		metrics.RecordWorkflow("push", metrics.OutcomeFailed)
		respond.Error(w, h.Log, apierr.Internal("push fan-out failed", err))
		return
	}
	metrics.RecordWorkflow("push", metrics.OutcomeOK)
	respond.JSON(w, http.StatusOK, pushResponse{OK: true, Result: res})
}
