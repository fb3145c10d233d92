package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/agame/internal/api"
	"github.com/mcoot/agame/internal/api/middleware"
	"github.com/mcoot/agame/internal/config"
	"github.com/mcoot/agame/internal/dependencies/clock"
	"github.com/mcoot/agame/internal/dependencies/random"
	"github.com/mcoot/agame/internal/services/identity"
	"github.com/mcoot/agame/internal/services/points"
	"github.com/mcoot/agame/internal/session"
	sessionmemory "github.com/mcoot/agame/internal/session/memory"
	sessionredis "github.com/mcoot/agame/internal/session/redis"
	"github.com/mcoot/agame/internal/storage"
	"github.com/mcoot/agame/internal/storage/memory"
	redisstorage "github.com/mcoot/agame/internal/storage/redis"
	sqlstorage "github.com/mcoot/agame/internal/storage/sql"
	"github.com/mcoot/agame/internal/throttle"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger *slog.Logger

	// Storage
	Storage      storage.Storage
	SessionStore session.Store
	Limiter      throttle.Limiter

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Sessions        *session.Manager
	IdentityService *identity.Service
	PointsService   *points.Service

	// redis is the shared client, nil when no backend uses Redis
	redis *goredis.Client
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := clock.New()
	rnd := random.New()

	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		client, err := redisstorage.NewClient(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		redisClient = client
	}

	// Create storage based on type
	var store storage.Storage
	switch cfg.StorageType {
	case config.BackendMemory:
		store = memory.New(clk)
	case config.BackendRedis:
		store = redisstorage.NewWithClient(redisClient, clk)
	case config.BackendMySQL, config.BackendPostgres:
		sqlCfg := sqlstorage.DefaultConfig()
		sqlCfg.Dialect = sqlstorage.Dialect(cfg.StorageType)
		sqlCfg.DSN = cfg.DatabaseDSN
		sqlCfg.Migrate = cfg.DatabaseMigrate
		sqlStore, err := sqlstorage.Open(ctx, sqlCfg)
		if err != nil {
			closeRedis(redisClient)
			return nil, err
		}
		store = sqlStore
	default:
		closeRedis(redisClient)
		return nil, errors.New("invalid StorageType: must be memory, redis, mysql or postgres")
	}

	var sessions session.Store = sessionmemory.New(clk)
	if cfg.SessionStore == config.BackendRedis {
		sessions = sessionredis.New(redisClient)
	}

	var limiter throttle.Limiter = throttle.NewLocalLimiter(cfg.ThrottleRates, clk, 0)
	if cfg.ThrottleStore == config.BackendRedis {
		limiter = throttle.NewRedisLimiter(redisClient, cfg.ThrottleRates, clk)
	}

	app := newWithDependencies(cfg, store, sessions, limiter, clk, rnd, logger)
	app.redis = redisClient
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg config.Config, store storage.Storage, sessions session.Store, limiter throttle.Limiter, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	manager := session.NewManager(sessions, rnd, session.Config{
		CookieName: cfg.SessionCookieName,
		CookiePath: cfg.CookiePath,
		Secure:     cfg.CookieSecure,
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     cfg.SessionCookieAge,
	}, logger)

	return &App{
		Config:          cfg,
		Logger:          logger,
		Storage:         store,
		SessionStore:    sessions,
		Limiter:         limiter,
		Clock:           clk,
		Random:          rnd,
		Sessions:        manager,
		IdentityService: identity.New(store, rnd, logger),
		PointsService:   points.New(store, logger),
	}
}

// Handler builds the HTTP handler for the API
func (a *App) Handler() http.Handler {
	csrf := middleware.DefaultCSRFConfig()
	csrf.CookieName = a.Config.CSRFCookieName
	csrf.CookiePath = a.Config.CookiePath
	csrf.HeaderName = a.Config.CSRFHeaderName
	csrf.Secure = a.Config.CookieSecure
	csrf.MaxAge = a.Config.CSRFCookieAge
	csrf.TrustedOrigins = a.Config.CSRFTrustedOrigins

	return api.NewRouter(api.RouterConfig{
		Logger:          a.Logger,
		Storage:         a.Storage,
		IdentityService: a.IdentityService,
		PointsService:   a.PointsService,
		Sessions:        a.Sessions,
		Limiter:         a.Limiter,
		Random:          a.Random,
		CSRF:            csrf,
		CORS:            middleware.CORSConfig{AllowedOrigins: a.Config.CORSAllowedOrigins},
	})
}

// Close releases storage and Redis connections
func (a *App) Close() error {
	err := a.Storage.Close()
	if _, ok := a.Storage.(*redisstorage.Storage); !ok {
		closeRedis(a.redis)
	}
	return err
}

func closeRedis(client *goredis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
