package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/agame/internal/api/apierr"
	"github.com/mcoot/agame/internal/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	csrfContextKey    contextKey = "csrf"
)

// Session loads the caller's session and places it in the request context.
// Loading never writes; handlers decide whether to save.
func Session(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(r)
			if err != nil {
				logger.Error("failed to load session", slog.Any("error", err))
				apierr.WriteError(w, apierr.NewInternalError())
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *session.Session {
	sess := GetSession(ctx)
	if sess == nil {
		panic("no session in context - session middleware not applied?")
	}
	return sess
}

// GetCSRFToken returns the CSRF token attached to this request, if any
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey).(string)
	return token
}
