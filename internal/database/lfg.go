package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

// ListLFGPosts returns the newest looking-for-group posts, optionally for one game.
func (s *Store) ListLFGPosts(ctx context.Context, gameID *uuid.UUID, limit int) ([]models.LFGPost, error) {
	q := `
		SELECT id, user_id, game_id, platform, message, slots_open, created_at
		FROM player_lfg_posts
		WHERE $1::uuid IS NULL OR game_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, q, gameID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("list lfg posts: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.LFGPost, error) {
		var p models.LFGPost
		err := r.Scan(&p.ID, &p.UserID, &p.GameID, &p.Platform, &p.Message, &p.SlotsOpen, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list lfg posts: %w", err)
	}
	return out, nil
}

func (s *Store) CreateLFGPost(ctx context.Context, p *models.LFGPost) error {
	p.Message = strings.TrimSpace(p.Message)
	if p.Message == "" {
		return fmt.Errorf("create lfg post: %w: message is required", ErrInvalid)
	}
	if p.SlotsOpen <= 0 {
		p.SlotsOpen = 1
	}
	q := `
		INSERT INTO player_lfg_posts (user_id, game_id, platform, message, slots_open)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, p.UserID, p.GameID, p.Platform, p.Message, p.SlotsOpen).Scan(&p.ID, &p.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("create lfg post: %w", translate(err))
	}
	return nil
}

// DeleteLFGPost removes a post owned by userID.
func (s *Store) DeleteLFGPost(ctx context.Context, id, userID uuid.UUID) error {
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM player_lfg_posts WHERE id=$1 AND user_id=$2`, id, userID)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete lfg post: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete lfg post: %w", ErrNotFound)
	}
	return nil
}
