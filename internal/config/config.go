// Package config builds the application configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/agame/internal/throttle"
)

// Backend names accepted by STORAGE_TYPE, SESSION_STORE and THROTTLE_STORE
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration
type Config struct {
	HTTPHost string
	HTTPPort int
	LogLevel slog.Level

	StorageType   string
	SessionStore  string
	ThrottleStore string
	RedisURL      string
	DatabaseDSN   string
	// DatabaseMigrate applies embedded migrations at startup
	DatabaseMigrate bool

	CookieSecure bool
	CookiePath   string

	SessionCookieName string
	SessionCookieAge  time.Duration

	CSRFCookieName     string
	CSRFCookieAge      time.Duration
	CSRFHeaderName     string
	CSRFTrustedOrigins []string

	CORSAllowedOrigins []string

	ThrottleRates throttle.Rates
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		HTTPPort:          8080,
		LogLevel:          slog.LevelInfo,
		StorageType:       BackendMemory,
		SessionStore:      BackendMemory,
		ThrottleStore:     BackendMemory,
		RedisURL:          "redis://localhost:6379/0",
		DatabaseMigrate:   true,
		CookieSecure:      true,
		CookiePath:        "/api/",
		SessionCookieName: "agame_session",
		SessionCookieAge:  2 * 365 * 24 * time.Hour,
		CSRFCookieName:    "agame_csrf",
		CSRFCookieAge:     365 * 24 * time.Hour,
		CSRFHeaderName:    "X-CSRFToken",
		ThrottleRates:     throttle.DefaultRates(),
	}
}

// Load applies envFile (if it exists) to the process environment without
// overriding variables that are already set, then reads the configuration.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	cfg.HTTPHost = envStr("HTTP_HOST", cfg.HTTPHost)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort, &errs)

	if v, ok := lookup("LOG_LEVEL"); ok {
		lvl, err := ParseLevel(v)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.LogLevel = lvl
	}

	cfg.StorageType = strings.ToLower(envStr("STORAGE_TYPE", cfg.StorageType))
	cfg.SessionStore = strings.ToLower(envStr("SESSION_STORE", cfg.SessionStore))
	cfg.ThrottleStore = strings.ToLower(envStr("THROTTLE_STORE", cfg.ThrottleStore))
	cfg.RedisURL = envStr("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseDSN = envStr("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.DatabaseMigrate = envBool("DATABASE_MIGRATE", cfg.DatabaseMigrate, &errs)

	cfg.CookieSecure = envBool("COOKIE_SECURE", cfg.CookieSecure, &errs)
	cfg.CookiePath = envStr("COOKIE_PATH", cfg.CookiePath)

	cfg.SessionCookieName = envStr("SESSION_COOKIE_NAME", cfg.SessionCookieName)
	cfg.SessionCookieAge = envDur("SESSION_COOKIE_AGE", cfg.SessionCookieAge, &errs)

	cfg.CSRFCookieName = envStr("CSRF_COOKIE_NAME", cfg.CSRFCookieName)
	cfg.CSRFCookieAge = envDur("CSRF_COOKIE_AGE", cfg.CSRFCookieAge, &errs)
	cfg.CSRFHeaderName = envStr("CSRF_HEADER_NAME", cfg.CSRFHeaderName)
	cfg.CSRFTrustedOrigins = envList("CSRF_TRUSTED_ORIGINS")

	cfg.CORSAllowedOrigins = envList("CORS_ALLOWED_ORIGINS")

	for scope, key := range map[string]string{
		throttle.ScopeUserMe: "THROTTLE_RATE_USER_ME",
		throttle.ScopePoints: "THROTTLE_RATE_POINTS",
	} {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if strings.EqualFold(v, "none") || strings.EqualFold(v, "off") {
			delete(cfg.ThrottleRates, scope)
			continue
		}
		rate, err := throttle.ParseRate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		cfg.ThrottleRates[scope] = rate
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case BackendMemory, BackendRedis:
	case BackendMySQL, BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN required when STORAGE_TYPE=%s", c.StorageType)
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis, mysql or postgres", c.StorageType)
	}

	for name, v := range map[string]string{"SESSION_STORE": c.SessionStore, "THROTTLE_STORE": c.ThrottleStore} {
		if v != BackendMemory && v != BackendRedis {
			return fmt.Errorf("invalid %s %q: must be memory or redis", name, v)
		}
	}

	if c.UsesRedis() && c.RedisURL == "" {
		return errors.New("REDIS_URL required when a redis backend is selected")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.SessionCookieName == c.CSRFCookieName {
		return errors.New("session and CSRF cookies must have different names")
	}
	return nil
}

// UsesRedis reports whether any backend needs a Redis connection
func (c Config) UsesRedis() bool {
	return c.StorageType == BackendRedis || c.SessionStore == BackendRedis || c.ThrottleStore == BackendRedis
}

// NewLogger returns a JSON logger writing to w at the configured level
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: c.LogLevel,
	}))
}

// ParseLevel parses debug, info, warn/warning or error
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func envStr(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid int for %s: %q", key, v))
		return def
	}
	return n
}

func envBool(key string, def bool, errs *[]error) bool {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid bool for %s: %q", key, v))
		return def
	}
	return b
}

func envDur(key string, def time.Duration, errs *[]error) time.Duration {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %q", key, v))
		return def
	}
	return d
}

func envList(key string) []string {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
