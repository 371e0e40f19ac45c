// internal/app/system/respond/respond.go
package respond

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard failure body:
//
//	{ "ok": false, "error": "...", ...details }
//
// Errors that are not *apierr.Error become a generic 500; the cause is logged only.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = apierr.Internal("internal error", err)
	}

	body := map[string]any{}
	for k, v := range ae.Details {
		body[k] = v
	}
	body["ok"] = false
	body["error"] = ae.Message

	if ae.Status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", ae.Status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", ae.Status), zap.String("error", ae.Message))
	}
	JSON(w, ae.Status, body)
}

// Recoverer turns panics into a JSON 500 so no handler ever answers with an
// empty or HTML body.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in handler",
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec))
					Error(w, log, apierr.Internal("internal error", fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
