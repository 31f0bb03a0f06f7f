package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger writes one structured access log line per request
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.InfoContext(r.Context(), "HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// rejectionWriter turns the throttle's plain-text 429 into the JSON error body
type rejectionWriter struct {
	http.ResponseWriter
	rejected bool
}

func (w *rejectionWriter) WriteHeader(code int) {
	if code != http.StatusTooManyRequests || w.rejected {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.rejected = true
	writeJSON(w.ResponseWriter, code, errorBody{
		Error:   "too_many_requests",
		Message: "server is at capacity, retry later",
	})
}

func (w *rejectionWriter) Write(b []byte) (int, error) {
	if w.rejected {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *rejectionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// throttle admits at most limit concurrent requests and queues up to backlog more for backlogTimeout
func throttle(limit, backlog int, backlogTimeout time.Duration) func(http.Handler) http.Handler {
	limiter := middleware.ThrottleBacklog(limit, backlog, backlogTimeout)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited.ServeHTTP(&rejectionWriter{ResponseWriter: w}, r)
		})
	}
}
