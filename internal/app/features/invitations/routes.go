package invitations

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/invitations. limit wraps the
// endpoints callers can hammer (issue and respond).
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(lr chi.Router) {
		lr.Use(limit)
		lr.Post("/", h.HandleInvite)
		lr.Post("/respond", h.HandleRespond)
	})
	r.Post("/expire", h.HandleExpire)
	return r
}
