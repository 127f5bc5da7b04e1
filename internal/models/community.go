package models

import (
	"time"

	"github.com/google/uuid"
)

type Community struct {
	ID          uuid.UUID  `json:"id"`
	GameID      *uuid.UUID `json:"game_id,omitempty"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InviteURL   string     `json:"invite_url"`
	MemberCount int        `json:"member_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PlayGuide is a "how to play together" article for a game.
type PlayGuide struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"game_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
