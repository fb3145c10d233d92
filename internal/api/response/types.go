package response

import (
	"time"

	"github.com/mcoot/agame/internal/model"
)

// Profile is the public view of a user and their points
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      *string   `json:"name"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileFromModel converts a model.Profile to a response Profile
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		UserID:    string(p.UserID),
		Name:      p.Name,
		Points:    p.Points,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
