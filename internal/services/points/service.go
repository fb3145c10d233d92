// Package points maintains per-user point totals.
package points

import (
	"context"
	"log/slog"

	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/storage"
)

// Service applies point increments through the storage layer
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new points service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Add adds amount to the user's total and returns the new total.
// The increment is a single atomic storage operation; a missing account
// yields model.ErrUserNotFound and is never recreated.
func (s *Service) Add(ctx context.Context, id model.UserID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}

	total, err := s.storage.AddPoints(ctx, id, amount)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("points added", "user_id", id, "amount", amount, "total", total)
	return total, nil
}
