package notifications

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /api/notifications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/push", h.HandlePush)
	return r
}
