package model

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies an anonymous user (UUID v4 textual form)
type UserID string

// Valid reports whether the id parses as a UUID
func (id UserID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// User is the identity row. Name is never set by this service.
type User struct {
	ID        UserID
	Name      *string
	CreatedAt time.Time
}

// PointsAccount holds the points counter for exactly one User
type PointsAccount struct {
	UserID    UserID
	Points    int64
	UpdatedAt time.Time
}

// Profile is the joined view of a User and its PointsAccount.
// A profile only exists when both rows exist.
type Profile struct {
	UserID    UserID
	Name      *string
	Points    int64
	CreatedAt time.Time
}
