// Package identity resolves the anonymous user behind a session,
// creating one when the session has none or its user has vanished.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/agame/internal/dependencies/random"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/session"
	"github.com/mcoot/agame/internal/storage"
)

// Service resolves session identities
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new identity service
func New(storage storage.Storage, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  rnd,
		logger:  logger,
	}
}

// Resolve returns the profile bound to sess. When the session is unbound,
// or bound to a user that no longer exists, a new user is created and bound
// to the session, and created is true. The caller must save the session.
func (s *Service) Resolve(ctx context.Context, sess *session.Session) (profile *model.Profile, created bool, err error) {
	if id := sess.UserID(); id != "" {
		profile, err := s.storage.GetProfile(ctx, id)
		if err == nil {
			return profile, false, nil
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return nil, false, err
		}
		s.logger.Info("session references missing user, issuing new identity",
			"stale_user_id", id)
	}

	profile, err = s.create(ctx)
	if err != nil {
		return nil, false, err
	}
	sess.Bind(profile.UserID)
	return profile, true, nil
}

// Current returns the profile bound to sess without creating one.
// Returns model.ErrNoIdentity when the session is unbound.
func (s *Service) Current(ctx context.Context, sess *session.Session) (*model.Profile, error) {
	id := sess.UserID()
	if id == "" {
		return nil, model.ErrNoIdentity
	}
	return s.storage.GetProfile(ctx, id)
}

func (s *Service) create(ctx context.Context) (*model.Profile, error) {
	user := &model.User{ID: model.UserID(s.random.UUID())}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile, err := s.storage.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("read new user: %w", err)
	}

	s.logger.Info("created anonymous user", "user_id", user.ID)
	return profile, nil
}
