package invitations

import (
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"go.uber.org/zap"
)

// Handler serves the invitation endpoints.
type Handler struct {
	Svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

type inviteRequest struct {
	GroupID            string `json:"groupId" validate:"required,objectid"`
	InvitedByProfileID string `json:"invitedByProfileId" validate:"required,objectid"`
	InvitedEmail       string `json:"invitedEmail" validate:"required,email,max=254"`
	InvitedRoleID      string `json:"invitedRoleId" validate:"required,objectid"`
	MembershipRole     string `json:"membershipRole" validate:"omitempty,oneof=OWNER MEMBER"`
	Message            string `json:"message" validate:"max=1000"`
	ExpiryDays         *int   `json:"expiryDays" validate:"omitempty,min=0,max=365"`
}

type inviteResponse struct {
	OK bool `json:"ok"`
	InviteResult
}

// HandleInvite handles POST /api/invitations.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := validation.Bind(r, &req); err != nil {
		h.fail(w, "invite", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "invite")
	defer cancel()

	res, err := h.Svc.Invite(ctx, InviteInput{
		GroupID:            validation.ObjectID(req.GroupID),
		InvitedByProfileID: validation.ObjectID(req.InvitedByProfileID),
		InvitedEmail:       req.InvitedEmail,
		InvitedRoleID:      validation.ObjectID(req.InvitedRoleID),
		MembershipRole:     req.MembershipRole,
		Message:            req.Message,
		ExpiryDays:         req.ExpiryDays,
	})
	if err != nil {
		h.fail(w, "invite", err)
		return
	}
	metrics.RecordWorkflow("invite", metrics.OutcomeOK)
	respond.JSON(w, http.StatusCreated, inviteResponse{OK: true, InviteResult: res})
}

type respondRequest struct {
	Token     string `json:"token" validate:"required,len=32,alphanum"`
	ProfileID string `json:"profileId" validate:"required,objectid"`
	Action    string `json:"action" validate:"omitempty,oneof=accept reject cancel"`
}

type respondResponse struct {
	OK bool `json:"ok"`
	RespondResult
}

// HandleRespond handles POST /api/invitations/respond.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := validation.Bind(r, &req); err != nil {
		h.fail(w, "respond", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "respond to invitation")
	defer cancel()

	res, err := h.Svc.Respond(ctx, req.Token, validation.ObjectID(req.ProfileID), req.Action)
	if err != nil {
		h.fail(w, "respond", err)
		return
	}
	metrics.RecordWorkflow("respond", metrics.OutcomeOK)
	respond.JSON(w, http.StatusOK, respondResponse{OK: true, RespondResult: res})
}

type expireRequest struct {
	BatchSize int `json:"batchSize" validate:"omitempty,min=1,max=1000"`
}

type expireResponse struct {
	OK bool `json:"ok"`
	ExpireResult
}

// HandleExpire handles POST /api/invitations/expire. The body is optional.
func (h *Handler) HandleExpire(w http.ResponseWriter, r *http.Request) {
	var req expireRequest
	if err := validation.BindOptional(r, &req); err != nil {
		h.fail(w, "expire", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "expire invitations")
	defer cancel()

	res, err := h.Svc.Expire(ctx, req.BatchSize)
	if err != nil {
		h.fail(w, "expire", apierr.Internal("expiry sweep failed", err))
		return
	}
	metrics.RecordWorkflow("expire", metrics.OutcomeOK)
	respond.JSON(w, http.StatusOK, expireResponse{OK: true, ExpireResult: res})
}

func (h *Handler) fail(w http.ResponseWriter, workflow string, err error) {
	metrics.RecordWorkflow(workflow, metrics.OutcomeForStatus(apierr.StatusOf(err)))
	respond.Error(w, h.Log, err)
}
