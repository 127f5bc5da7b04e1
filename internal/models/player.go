package models

import (
	"time"

	"github.com/google/uuid"
)

// PresenceStatus is the availability a player advertises for a game.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceLooking PresenceStatus = "looking"
	PresenceOffline PresenceStatus = "offline"
)

// Valid reports whether s is one of the known presence values.
func (s PresenceStatus) Valid() bool {
	switch s {
	case PresenceOnline, PresenceLooking, PresenceOffline:
		return true
	}
	return false
}

// Available reports whether a player with this status should appear in a lobby.
func (s PresenceStatus) Available() bool {
	return s == PresenceOnline || s == PresenceLooking
}

// Player is a row of the players table: one user's presence for one game.
// Unique on (user_id, game_id).
type Player struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	GameID      uuid.UUID      `json:"game_id"`
	DisplayName string         `json:"display_name"`
	Platform    string         `json:"platform"`
	Status      PresenceStatus `json:"status"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
