package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a row of the games table. Rows are written by the seeder and read-only at runtime.
type Game struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	HeroURL     string    `json:"hero_url"`
	Platforms   []string  `json:"platforms"`
	Genres      []string  `json:"genres"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ref returns the compact reference stored in lobby state.
func (g Game) Ref() *GameRef {
	return &GameRef{ID: g.ID, Slug: g.Slug, Title: g.Title, CoverURL: g.CoverURL}
}

// GameVersion is a release/patch entry for a game.
type GameVersion struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"game_id"`
	Version    string    `json:"version"`
	Notes      string    `json:"notes"`
	ReleasedAt time.Time `json:"released_at"`
}

// GameFilter narrows ListGames. Empty fields match everything.
type GameFilter struct {
	Platform string
	Genre    string
	Tag      string
	Query    string
	Limit    int
	Offset   int
}
