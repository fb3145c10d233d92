package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/agame/internal/api/apierr"
	"github.com/mcoot/agame/internal/throttle"
)

// Throttle limits requests in scope. Callers with a stored session are
// keyed by its digest, everyone else by remote address. Limiter failures
// let the request through.
func Throttle(limiter throttle.Limiter, scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := throttleKey(r)

			decision, err := limiter.Allow(r.Context(), scope, key)
			if err != nil {
				logger.Warn("throttle check failed, allowing request",
					slog.String("scope", scope),
					slog.String("key", key),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				logger.Warn("request throttled",
					slog.String("scope", scope),
					slog.String("key", key),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Duration("retry_after", decision.RetryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
				apierr.WriteError(w, apierr.NewRateLimitedError())
				return
			}

			logger.Debug("request allowed",
				slog.String("scope", scope),
				slog.String("key", key),
			)
			next.ServeHTTP(w, r)
		})
	}
}

func throttleKey(r *http.Request) string {
	if sess := GetSession(r.Context()); sess != nil && !sess.IsNew() {
		return "session:" + sess.Key()
	}
	return "ip:" + clientIP(r)
}

// clientIP uses RemoteAddr only; forwarded headers are client-controlled
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func retryAfterSeconds(d throttle.Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
