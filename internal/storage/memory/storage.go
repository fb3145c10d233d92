package memory

import (
	"context"
	"math"
	"sync"

	"github.com/mcoot/agame/internal/dependencies/clock"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	users    map[model.UserID]*model.User
	accounts map[model.UserID]*model.PointsAccount
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:    clk,
		users:    make(map[model.UserID]*model.User),
		accounts: make(map[model.UserID]*model.PointsAccount),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	u := *user
	s.users[user.ID] = &u
	s.accounts[user.ID] = &model.PointsAccount{
		UserID:    user.ID,
		Points:    0,
		UpdatedAt: now,
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	return &model.Profile{
		UserID:    user.ID,
		Name:      user.Name,
		Points:    account.Points,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	delete(s.users, id)
	return nil
}

// Points operations

func (s *Storage) AddPoints(ctx context.Context, id model.UserID, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	if amount > math.MaxInt64-account.Points {
		return 0, model.ErrPointsOverflow
	}
	account.Points += amount
	account.UpdatedAt = s.clock.Now()
	return account.Points, nil
}

// Lifecycle

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// DeleteAccount removes only the PointsAccount row, leaving a dangling User.
// Lets tests exercise the join-as-existence rule.
func (s *Storage) DeleteAccount(id model.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}
