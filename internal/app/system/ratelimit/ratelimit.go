// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net/http"
	"time"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// PerIP limits each client IP to limit requests per window and answers
// excess requests with a JSON 429. A non-positive limit disables limiting.
func PerIP(limit int, window time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, log, apierr.New(http.StatusTooManyRequests, "too many requests, try again later"))
		}),
	)
}
