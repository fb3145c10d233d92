package redis

import (
	"fmt"

	"github.com/mcoot/agame/internal/model"
)

// Key prefix for all user data
const keyPrefix = "agame"

// Hash fields
const (
	fieldName      = "name"
	fieldCreatedAt = "created_at"
	fieldPoints    = "points"
	fieldUpdatedAt = "updated_at"
)

// userKey returns the Redis key for a User hash
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// accountKey returns the Redis key for a PointsAccount hash
func accountKey(id model.UserID) string {
	return fmt.Sprintf("%s:points:%s", keyPrefix, id)
}
