package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled play session. Capacity 0 means unlimited.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	GameID           *uuid.UUID `json:"game_id,omitempty"`
	CommunityID      *uuid.UUID `json:"community_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	Capacity         int        `json:"capacity"`
	ParticipantCount int        `json:"participant_count"`
}

type EventParticipant struct {
	EventID  uuid.UUID `json:"event_id"`
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
