package storage

import (
	"context"

	"github.com/mcoot/agame/internal/model"
)

// Storage defines the interface for data persistence.
//
// A user exists only while both its User row and its PointsAccount row exist;
// implementations must never expose one without the other.
type Storage interface {
	// User operations

	// CreateUser inserts the User and a zero-point PointsAccount as one atomic unit
	CreateUser(ctx context.Context, user *model.User) error
	// GetProfile returns the joined profile, or model.ErrUserNotFound if either row is missing
	GetProfile(ctx context.Context, id model.UserID) (*model.Profile, error)
	// DeleteUser removes both rows. Used for administrative cleanup only.
	DeleteUser(ctx context.Context, id model.UserID) error

	// Points operations

	// AddPoints atomically adds amount to the counter and returns the new total.
	// Returns model.ErrUserNotFound when no account row matched; never creates one.
	AddPoints(ctx context.Context, id model.UserID, amount int64) (int64, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
