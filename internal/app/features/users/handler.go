package users

import (
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// Routes returns a subrouter mounted under /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	return r
}

type createRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=120"`
	GroupID  string `json:"groupId" validate:"omitempty,objectid"`
	RoleID   string `json:"roleId" validate:"omitempty,objectid"`
}

type createResponse struct {
	OK bool `json:"ok"`
	Result
}

// HandleCreate handles POST /api/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := validation.Bind(r, &req); err != nil {
		metrics.RecordWorkflow("create_user", metrics.OutcomeRejected)
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create user")
	defer cancel()

	res, err := h.Svc.CreateUser(ctx, Input{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		GroupID:  optionalID(req.GroupID),
		RoleID:   optionalID(req.RoleID),
	})
	if err != nil {
		metrics.RecordWorkflow("create_user", metrics.OutcomeForStatus(apierr.StatusOf(err)))
		respond.Error(w, h.Log, err)
		return
	}
	metrics.RecordWorkflow("create_user", metrics.OutcomeOK)
	respond.JSON(w, http.StatusCreated, createResponse{OK: true, Result: res})
}

func optionalID(hex string) *primitive.ObjectID {
	if hex == "" {
		return nil
	}
	id := validation.ObjectID(hex)
	return &id
}
