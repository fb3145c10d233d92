package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mcoot/agame/internal/api/apierr"
	"github.com/mcoot/agame/internal/dependencies/random"
)

// CSRFConfig holds double-submit cookie settings
type CSRFConfig struct {
	CookieName     string
	CookiePath     string
	HeaderName     string
	FormField      string
	Secure         bool
	SameSite       http.SameSite
	MaxAge         time.Duration
	TrustedOrigins []string
}

// DefaultCSRFConfig returns the default CSRF settings
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName: "agame_csrf",
		CookiePath: "/api/",
		HeaderName: "X-CSRFToken",
		FormField:  "csrfmiddlewaretoken",
		Secure:     true,
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     365 * 24 * time.Hour,
	}
}

const (
	csrfTokenBytes  = 32
	maxCSRFTokenLen = 256
)

// CSRF enforces double-submit verification on unsafe methods. Safe
// requests get the CSRF cookie attached (minting one if needed) before the
// handler runs. Unsafe requests must echo the cookie value in the header or
// form field, otherwise they are rejected with 403 before any handler work.
func CSRF(cfg CSRFConfig, rnd random.Random, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookieToken := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil && wellFormedCSRFToken(c.Value) {
				cookieToken = c.Value
			}

			if isSafeMethod(r.Method) {
				if cookieToken == "" {
					cookieToken = rnd.Token(csrfTokenBytes)
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    cookieToken,
					Path:     cfg.CookiePath,
					MaxAge:   int(cfg.MaxAge.Seconds()),
					Expires:  time.Now().Add(cfg.MaxAge),
					Secure:   cfg.Secure,
					HttpOnly: false, // read by browser scripts for the echo
					SameSite: cfg.SameSite,
				})
				next.ServeHTTP(w, withCSRFToken(r, cookieToken))
				return
			}

			if reason := checkOrigin(r, cfg.TrustedOrigins); reason != "" {
				rejectCSRF(w, r, logger, reason)
				return
			}
			if cookieToken == "" {
				rejectCSRF(w, r, logger, "CSRF cookie not set")
				return
			}

			submitted := r.Header.Get(cfg.HeaderName)
			if submitted == "" && isFormRequest(r) {
				submitted = r.PostFormValue(cfg.FormField)
			}
			if submitted == "" {
				rejectCSRF(w, r, logger, "CSRF token missing")
				return
			}
			if subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
				rejectCSRF(w, r, logger, "CSRF token incorrect")
				return
			}

			next.ServeHTTP(w, withCSRFToken(r, cookieToken))
		})
	}
}

func withCSRFToken(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), csrfContextKey, token))
}

func rejectCSRF(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string) {
	logger.Warn("csrf verification failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	apierr.WriteError(w, apierr.NewCSRFError(reason))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func wellFormedCSRFToken(token string) bool {
	if token == "" || len(token) > maxCSRFTokenLen {
		return false
	}
	for _, c := range token {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// checkOrigin rejects a present Origin that is neither the request host
// nor a trusted origin. Requests without Origin are left to the token check.
func checkOrigin(r *http.Request, trusted []string) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	if slices.Contains(trusted, origin) {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "origin checking failed"
	}
	if strings.EqualFold(u.Host, r.Host) {
		return ""
	}
	return "origin " + origin + " is not trusted"
}
