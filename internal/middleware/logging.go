package middleware

import (
	"net/http"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/felixge/httpsnoop"
)

// RequestLogger logs one line per request. Query strings are left out so
// credentials passed there never reach the logs.
func RequestLogger(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration,
			"bytes", m.Written,
		}
		switch {
		case m.Code >= 500:
			log.Error("request", fields...)
		case m.Code >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	})
}
