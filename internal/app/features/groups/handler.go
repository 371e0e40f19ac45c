// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"go.uber.org/zap"
)

// Handler serves the group provisioning endpoint.
type Handler struct {
	Prov *Provisioner
	Log  *zap.Logger
}

func NewHandler(prov *Provisioner, logger *zap.Logger) *Handler {
	return &Handler{Prov: prov, Log: logger}
}

type createRequest struct {
	OwnerProfileID     string `json:"ownerProfileId" validate:"required,objectid"`
	Name               string `json:"name" validate:"required,max=120"`
	Description        string `json:"description" validate:"max=1000"`
	LogoFileID         string `json:"logoFileId" validate:"max=128"`
	Timezone           string `json:"timezone" validate:"omitempty,timezone_name"`
	CreateTeamCalendar bool   `json:"createTeamCalendar"`
}

type createResponse struct {
	OK bool `json:"ok"`
	Result
}

// HandleCreate handles POST /api/groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := validation.Bind(r, &req); err != nil {
		metrics.RecordWorkflow("create_group", metrics.OutcomeRejected)
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create group")
	defer cancel()

	res, err := h.Prov.CreateWithDefaults(ctx, Input{
		OwnerProfileID:     validation.ObjectID(req.OwnerProfileID),
		Name:               req.Name,
		Description:        req.Description,
		LogoFileID:         req.LogoFileID,
		Timezone:           req.Timezone,
		CreateTeamCalendar: req.CreateTeamCalendar,
	})
	if err != nil {
		metrics.RecordWorkflow("create_group", metrics.OutcomeForStatus(apierr.StatusOf(err)))
		respond.Error(w, h.Log, err)
		return
	}

	metrics.RecordWorkflow("create_group", metrics.OutcomeOK)
	respond.JSON(w, http.StatusCreated, createResponse{OK: true, Result: res})
}
