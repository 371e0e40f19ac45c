// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	groupsfeature "github.com/dalemusser/agendapro/internal/app/features/groups"
	healthfeature "github.com/dalemusser/agendapro/internal/app/features/health"
	invitationsfeature "github.com/dalemusser/agendapro/internal/app/features/invitations"
	notificationsfeature "github.com/dalemusser/agendapro/internal/app/features/notifications"
	usersfeature "github.com/dalemusser/agendapro/internal/app/features/users"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/auth"
	"github.com/dalemusser/agendapro/internal/app/system/ratelimit"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The API is JSON only: every response carries "ok",
// panics become JSON 500s, and /api/* requires X-Api-Key when api_key is set.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	return newRouter(appCfg, deps, logger), nil
}

func newRouter(appCfg AppConfig, deps DBDeps, logger *zap.Logger) chi.Router {
	svc := deps.Services

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(respond.Recoverer(logger))

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.AgendaMongoClient, logger)))
	r.Handle("/metrics", promhttp.Handler())

	limit := ratelimit.PerIP(appCfg.RateLimitPerMinute, time.Minute, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAPIKey(appCfg.APIKey, logger))

		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(svc.Users, logger)))
		api.Mount("/groups", groupsfeature.Routes(groupsfeature.NewHandler(svc.Provisioner, logger)))
		api.Mount("/invitations", invitationsfeature.Routes(invitationsfeature.NewHandler(svc.Invitations, logger), limit))
		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(svc.Notifier, logger)))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, logger, apierr.NotFound("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, logger, apierr.New(http.StatusMethodNotAllowed, "method not allowed"))
	})
	return r
}
