// internal/database/game.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

const gameColumns = `id, slug, title, description, cover_url, hero_url, platforms, genres, tags, created_at, updated_at`

func scanGame(row pgx.Row) (models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.Slug, &g.Title, &g.Description, &g.CoverURL, &g.HeroURL,
		&g.Platforms, &g.Genres, &g.Tags, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// ListGames returns games matching f ordered by title.
func (s *Store) ListGames(ctx context.Context, f models.GameFilter) ([]models.Game, error) {
	q := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE ($1 = '' OR $1 = ANY(platforms))
		  AND ($2 = '' OR $2 = ANY(genres))
		  AND ($3 = '' OR $3 = ANY(tags))
		  AND ($4 = '' OR title ILIKE '%' || $4 || '%')
		ORDER BY title
		LIMIT $5 OFFSET $6
	`
	rows, err := s.db.Query(ctx, q, f.Platform, f.Genre, f.Tag, f.Query, clampLimit(f.Limit, 50, 200), max(f.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games, err := collect(rows, func(r pgx.Rows) (models.Game, error) { return scanGame(r) })
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *Store) GetGameBySlug(ctx context.Context, slug string) (models.Game, error) {
	g, err := scanGame(s.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE slug=$1`, slug))
	if err != nil {
		return models.Game{}, fmt.Errorf("get game %q: %w", slug, translate(err))
	}
	return g, nil
}

func (s *Store) GetGameByID(ctx context.Context, id uuid.UUID) (models.Game, error) {
	g, err := scanGame(s.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1`, id))
	if err != nil {
		return models.Game{}, fmt.Errorf("get game %v: %w", id, translate(err))
	}
	return g, nil
}

// UpsertGame inserts g or updates the row with the same slug. ID and timestamps are written back into g.
func (s *Store) UpsertGame(ctx context.Context, g *models.Game) error {
	if g.Slug == "" || g.Title == "" {
		return fmt.Errorf("upsert game: %w: slug and title are required", ErrInvalid)
	}
	q := `
		INSERT INTO games (slug, title, description, cover_url, hero_url, platforms, genres, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			title=EXCLUDED.title,
			description=EXCLUDED.description,
			cover_url=EXCLUDED.cover_url,
			hero_url=EXCLUDED.hero_url,
			platforms=EXCLUDED.platforms,
			genres=EXCLUDED.genres,
			tags=EXCLUDED.tags,
			updated_at=NOW()
		RETURNING id, created_at, updated_at
	`
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, g.Slug, g.Title, g.Description, g.CoverURL, g.HeroURL,
			nonNil(g.Platforms), nonNil(g.Genres), nonNil(g.Tags)).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("upsert game %q: %w", g.Slug, translate(err))
	}
	return nil
}

// ListGameVersions returns a game's versions, newest first.
func (s *Store) ListGameVersions(ctx context.Context, gameID uuid.UUID) ([]models.GameVersion, error) {
	q := `
		SELECT id, game_id, version, notes, released_at
		FROM game_versions
		WHERE game_id=$1
		ORDER BY released_at DESC
	`
	rows, err := s.db.Query(ctx, q, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game versions: %w", err)
	}
	versions, err := collect(rows, func(r pgx.Rows) (models.GameVersion, error) {
		var v models.GameVersion
		err := r.Scan(&v.ID, &v.GameID, &v.Version, &v.Notes, &v.ReleasedAt)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("list game versions: %w", err)
	}
	return versions, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
