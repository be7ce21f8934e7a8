package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/motoqueiros/backend/internal/logger"
)

// RequestLogger logs one line per request. It must run after
// chimiddleware.RequestID.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				kv := []interface{}{
					"request_id", chimiddleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote_addr", r.RemoteAddr,
				}
				switch {
				case status >= http.StatusInternalServerError:
					log.Error("request completed", kv...)
				case status >= http.StatusBadRequest:
					log.Warn("request completed", kv...)
				default:
					log.Info("request completed", kv...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
