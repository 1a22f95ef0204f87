package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// busyGuard rejects data reads while a refresh run holds the coordinator
// slot, so clients retry after the run finishes instead of stacking up
// behind it.
func (h *handler) busyGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.svc.Refreshing() {
			w.Header().Set("Retry-After", retryAfterSeconds)
			writeError(w, http.StatusServiceUnavailable, "refresh in progress")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured log line per handled request.
func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("remote_addr", r.RemoteAddr).
			Msg("Request handled")
	})
}
