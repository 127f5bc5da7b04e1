// internal/database/community.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

const communityColumns = `id, game_id, slug, name, description, invite_url, member_count, created_at`

func scanCommunity(row pgx.Row) (models.Community, error) {
	var c models.Community
	err := row.Scan(&c.ID, &c.GameID, &c.Slug, &c.Name, &c.Description, &c.InviteURL, &c.MemberCount, &c.CreatedAt)
	return c, err
}

// ListCommunities returns communities, optionally restricted to one game, largest first.
func (s *Store) ListCommunities(ctx context.Context, gameID *uuid.UUID) ([]models.Community, error) {
	q := `
		SELECT ` + communityColumns + `
		FROM communities
		WHERE $1::uuid IS NULL OR game_id=$1
		ORDER BY member_count DESC, name
	`
	rows, err := s.db.Query(ctx, q, gameID)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.Community, error) { return scanCommunity(r) })
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return out, nil
}

func (s *Store) GetCommunityBySlug(ctx context.Context, slug string) (models.Community, error) {
	c, err := scanCommunity(s.db.QueryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE slug=$1`, slug))
	if err != nil {
		return models.Community{}, fmt.Errorf("get community %q: %w", slug, translate(err))
	}
	return c, nil
}

// ListPlayGuides returns guides, optionally for a single game, newest first.
func (s *Store) ListPlayGuides(ctx context.Context, gameID *uuid.UUID) ([]models.PlayGuide, error) {
	q := `
		SELECT id, game_id, slug, title, body, created_at
		FROM play_guides
		WHERE $1::uuid IS NULL OR game_id=$1
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, q, gameID)
	if err != nil {
		return nil, fmt.Errorf("list play guides: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.PlayGuide, error) { return scanPlayGuide(r) })
	if err != nil {
		return nil, fmt.Errorf("list play guides: %w", err)
	}
	return out, nil
}

func (s *Store) GetPlayGuideBySlug(ctx context.Context, slug string) (models.PlayGuide, error) {
	q := `SELECT id, game_id, slug, title, body, created_at FROM play_guides WHERE slug=$1`
	g, err := scanPlayGuide(s.db.QueryRow(ctx, q, slug))
	if err != nil {
		return models.PlayGuide{}, fmt.Errorf("get play guide %q: %w", slug, translate(err))
	}
	return g, nil
}

func scanPlayGuide(row pgx.Row) (models.PlayGuide, error) {
	var g models.PlayGuide
	err := row.Scan(&g.ID, &g.GameID, &g.Slug, &g.Title, &g.Body, &g.CreatedAt)
	return g, err
}
