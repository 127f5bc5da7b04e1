// internal/models/lobby.go
package models

import "github.com/google/uuid"

// GameRef is the slice of a Game the lobby keeps as its selected game.
type GameRef struct {
	ID       uuid.UUID `json:"id"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	CoverURL string    `json:"cover_url,omitempty"`
}

// LobbySnapshot is the persisted part of a session's lobby state.
// The matchmaking status is intentionally absent and is re-derived on restore.
type LobbySnapshot struct {
	Game      *GameRef `json:"game"`
	ShowLobby bool     `json:"showLobby"`
}
