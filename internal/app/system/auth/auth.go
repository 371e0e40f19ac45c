// Package auth guards the API. Callers are trusted backend services that
// present a shared key; end-user identity travels in the request body as
// profile ids.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/respond"
	"go.uber.org/zap"
)

// HeaderAPIKey carries the shared key.
const HeaderAPIKey = "X-Api-Key"

// RequireAPIKey rejects requests whose X-Api-Key does not match key.
// An empty key disables the check.
func RequireAPIKey(key string, log *zap.Logger) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(HeaderAPIKey))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				respond.Error(w, log, apierr.New(http.StatusUnauthorized, "invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
