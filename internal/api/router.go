package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/agame/internal/api/handler"
	"github.com/mcoot/agame/internal/api/middleware"
	"github.com/mcoot/agame/internal/dependencies/random"
	requestlog "github.com/mcoot/agame/internal/middleware"
	"github.com/mcoot/agame/internal/services/identity"
	"github.com/mcoot/agame/internal/services/points"
	"github.com/mcoot/agame/internal/session"
	"github.com/mcoot/agame/internal/storage"
	"github.com/mcoot/agame/internal/throttle"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Storage         storage.Storage
	IdentityService *identity.Service
	PointsService   *points.Service
	Sessions        *session.Manager
	Limiter         throttle.Limiter
	Random          random.Random
	CSRF            middleware.CSRFConfig
	CORS            middleware.CORSConfig
}

// NewRouter creates the API handler. Every request passes through
// recovery, logging and CORS; the user endpoints then run session load,
// throttle and CSRF verification, in that order, before the handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.IdentityService, cfg.PointsService, cfg.Sessions, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Logger)

	// Create middleware
	csrfMiddleware := middleware.CSRF(cfg.CSRF, cfg.Random, cfg.Logger)
	throttled := func(scope string) func(http.Handler) http.Handler {
		return middleware.Throttle(cfg.Limiter, scope, cfg.Logger)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Health check endpoint (no session)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Current-user routes
	user := api.PathPrefix("/user/me").Subrouter()
	user.Use(middleware.Session(cfg.Sessions, cfg.Logger))

	user.Handle("/", chain(http.HandlerFunc(userHandler.GetMe),
		throttled(throttle.ScopeUserMe),
		csrfMiddleware,
	)).Methods(http.MethodGet)

	user.Handle("/points/", chain(http.HandlerFunc(userHandler.AddPoints),
		throttled(throttle.ScopePoints),
		csrfMiddleware,
	)).Methods(http.MethodPost)

	corsHeaders := append([]string{cfg.CSRF.HeaderName}, cfg.CORS.AllowedHeaders...)
	return chain(r,
		middleware.Recovery(cfg.Logger),
		requestlog.Logging(cfg.Logger),
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedHeaders: corsHeaders,
		}),
	)
}

// chain wraps h so that mws run in the order given
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
