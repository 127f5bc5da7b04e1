// internal/database/friend.go

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

// Follow records follower -> followee. Following twice is a no-op.
func (s *Store) Follow(ctx context.Context, follower, followee uuid.UUID) error {
	if follower == followee {
		return fmt.Errorf("follow: %w: cannot follow yourself", ErrInvalid)
	}
	q := `
		INSERT INTO player_follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, follower, followee); err != nil {
			return fmt.Errorf("follow: %w", translate(err))
		}
		return nil
	})
}

// Unfollow hard deletes the follow edge.
func (s *Store) Unfollow(ctx context.Context, follower, followee uuid.UUID) error {
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM player_follows WHERE follower_id=$1 AND followee_id=$2`, follower, followee)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unfollow: %w", ErrNotFound)
	}
	return nil
}

// ListFollowers returns the edges pointing at userID.
func (s *Store) ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.PlayerFollow, error) {
	return s.listFollows(ctx, `WHERE followee_id=$1`, userID)
}

// ListFollowing returns the edges starting at userID.
func (s *Store) ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.PlayerFollow, error) {
	return s.listFollows(ctx, `WHERE follower_id=$1`, userID)
}

func (s *Store) listFollows(ctx context.Context, where string, userID uuid.UUID) ([]models.PlayerFollow, error) {
	q := `SELECT follower_id, followee_id, created_at FROM player_follows ` + where + ` ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.PlayerFollow, error) {
		var f models.PlayerFollow
		err := r.Scan(&f.FollowerID, &f.FolloweeID, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return out, nil
}

// ListPlayerGames returns a user's library, favorites first.
func (s *Store) ListPlayerGames(ctx context.Context, userID uuid.UUID) ([]models.PlayerGame, error) {
	q := `
		SELECT user_id, game_id, platform, handle, favorite, updated_at
		FROM player_games
		WHERE user_id=$1
		ORDER BY favorite DESC, updated_at DESC
	`
	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list player games: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.PlayerGame, error) {
		var pg models.PlayerGame
		err := r.Scan(&pg.UserID, &pg.GameID, &pg.Platform, &pg.Handle, &pg.Favorite, &pg.UpdatedAt)
		return pg, err
	})
	if err != nil {
		return nil, fmt.Errorf("list player games: %w", err)
	}
	return out, nil
}

func (s *Store) UpsertPlayerGame(ctx context.Context, pg *models.PlayerGame) error {
	q := `
		INSERT INTO player_games (user_id, game_id, platform, handle, favorite, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			platform=EXCLUDED.platform,
			handle=EXCLUDED.handle,
			favorite=EXCLUDED.favorite,
			updated_at=NOW()
		RETURNING updated_at
	`
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, pg.UserID, pg.GameID, pg.Platform, pg.Handle, pg.Favorite).Scan(&pg.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("upsert player game: %w", translate(err))
	}
	return nil
}

func (s *Store) RemovePlayerGame(ctx context.Context, userID, gameID uuid.UUID) error {
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM player_games WHERE user_id=$1 AND game_id=$2`, userID, gameID)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("remove player game: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("remove player game: %w", ErrNotFound)
	}
	return nil
}
