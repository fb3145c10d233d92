package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/agame/internal/dependencies/random"
	"github.com/mcoot/agame/internal/model"
)

// Config holds session cookie settings
type Config struct {
	CookieName string
	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration
}

// DefaultConfig returns the default session cookie settings
func DefaultConfig() Config {
	return Config{
		CookieName: "agame_session",
		CookiePath: "/api/",
		Secure:     true,
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     2 * 365 * 24 * time.Hour,
	}
}

// Manager loads sessions from requests and writes them back
type Manager struct {
	store  Store
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a session manager
func NewManager(store Store, rnd random.Random, cfg Config, logger *slog.Logger) *Manager {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	return &Manager{
		store:  store,
		random: rnd,
		cfg:    cfg,
		logger: logger,
	}
}

// Load returns the session named by the request cookie. A missing, unknown
// or expired token yields a fresh unsaved session with a newly minted token;
// client-chosen tokens are never adopted. Load performs no writes.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || !strings.HasPrefix(cookie.Value, TokenPrefix) {
		return m.newSession(), nil
	}

	data, err := m.store.Load(r.Context(), Digest(cookie.Value))
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			m.logger.Debug("session not found, minting new token")
			return m.newSession(), nil
		}
		return nil, fmt.Errorf("session load: %w", err)
	}

	return &Session{token: cookie.Value, Data: *data}, nil
}

// Save persists the session, refreshing its lifetime, and sets the cookie
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Save(ctx, s.Key(), &s.Data, m.cfg.MaxAge); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	s.isNew = false

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    s.token,
		Path:     m.cfg.CookiePath,
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		Expires:  time.Now().Add(m.cfg.MaxAge),
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: m.cfg.SameSite,
	})
	return nil
}

func (m *Manager) newSession() *Session {
	return &Session{
		token: TokenPrefix + m.random.Token(tokenBytes),
		isNew: true,
	}
}
