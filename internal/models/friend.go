package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerFollow is a one-directional follow edge between two users.
type PlayerFollow struct {
	FollowerID uuid.UUID `json:"follower_id"`
	FolloweeID uuid.UUID `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerGame is an entry of a user's game library shown on their profile.
type PlayerGame struct {
	UserID    uuid.UUID `json:"user_id"`
	GameID    uuid.UUID `json:"game_id"`
	Platform  string    `json:"platform"`
	Handle    string    `json:"handle"` // in-game name
	Favorite  bool      `json:"favorite"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LFGPost is a looking-for-group post in the social feed.
type LFGPost struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	GameID    uuid.UUID `json:"game_id"`
	Platform  string    `json:"platform"`
	Message   string    `json:"message"`
	SlotsOpen int       `json:"slots_open"`
	CreatedAt time.Time `json:"created_at"`
}
