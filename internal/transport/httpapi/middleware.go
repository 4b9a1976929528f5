package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
)

// ClientIDHeader names the caller's storage namespace. It is not trusted for
// rate limiting.
const ClientIDHeader = "X-Client-Id"

// rateLimiter allows limit requests per minute from each client IP. It runs
// after middleware.RealIP, so RemoteAddr already holds a forwarded address
// when one was sent; the port is dropped by httprate.KeyByIP.
func rateLimiter(limit int) func(http.Handler) http.Handler {
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
		}),
	)
}

// requestLogger logs one entry per request.
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"requestId": middleware.GetReqID(r.Context()),
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
				"remote":    r.RemoteAddr,
			})
			switch {
			case ww.Status() >= 500:
				entry.Error("request failed")
			case ww.Status() >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
		})
	}
}
