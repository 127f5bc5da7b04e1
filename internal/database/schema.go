package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		hero_url TEXT NOT NULL DEFAULT '',
		platforms TEXT[] NOT NULL DEFAULT '{}',
		genres TEXT[] NOT NULL DEFAULT '{}',
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS game_versions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		version TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		released_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (game_id, version)
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		display_name TEXT NOT NULL DEFAULT '',
		platform TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL CHECK (status IN ('online', 'looking', 'offline')),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, game_id)
	)`,
	`CREATE INDEX IF NOT EXISTS players_game_status_idx ON players (game_id, status, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS communities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		game_id UUID REFERENCES games(id) ON DELETE SET NULL,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		invite_url TEXT NOT NULL DEFAULT '',
		member_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		game_id UUID REFERENCES games(id) ON DELETE SET NULL,
		community_id UUID REFERENCES communities(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ,
		capacity INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS event_participants (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (event_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS play_guides (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS player_games (
		user_id UUID NOT NULL,
		game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		platform TEXT NOT NULL DEFAULT '',
		handle TEXT NOT NULL DEFAULT '',
		favorite BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, game_id)
	)`,
	`CREATE TABLE IF NOT EXISTS player_follows (
		follower_id UUID NOT NULL,
		followee_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (follower_id, followee_id),
		CHECK (follower_id <> followee_id)
	)`,
	`CREATE TABLE IF NOT EXISTS player_lfg_posts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		platform TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		slots_open INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS player_lfg_posts_game_idx ON player_lfg_posts (game_id, created_at DESC)`,
}

// Migrate creates every table and index the service uses. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
