// internal/database/player.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

// UpsertPresence writes p keyed on (user_id, game_id) and stamps updated_at.
func (s *Store) UpsertPresence(ctx context.Context, p *models.Player) error {
	if !p.Status.Valid() {
		return fmt.Errorf("upsert presence: %w: status %q", ErrInvalid, p.Status)
	}
	q := `
		INSERT INTO players (user_id, game_id, display_name, platform, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			display_name=EXCLUDED.display_name,
			platform=EXCLUDED.platform,
			status=EXCLUDED.status,
			updated_at=NOW()
		RETURNING id, updated_at
	`
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, p.UserID, p.GameID, p.DisplayName, p.Platform, string(p.Status)).Scan(&p.ID, &p.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("upsert presence: %w", translate(err))
	}
	return nil
}

// ListAvailablePlayers returns the online/looking presence rows of a game,
// online first, then most recently updated.
func (s *Store) ListAvailablePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	q := `
		SELECT id, user_id, game_id, display_name, platform, status, updated_at
		FROM players
		WHERE game_id=$1 AND status IN ('online', 'looking')
		ORDER BY (status = 'online') DESC, updated_at DESC
	`
	rows, err := s.db.Query(ctx, q, gameID)
	if err != nil {
		return nil, fmt.Errorf("list available players: %w", err)
	}
	players, err := collect(rows, func(r pgx.Rows) (models.Player, error) {
		var p models.Player
		var status string
		err := r.Scan(&p.ID, &p.UserID, &p.GameID, &p.DisplayName, &p.Platform, &status, &p.UpdatedAt)
		p.Status = models.PresenceStatus(status)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list available players: %w", err)
	}
	return players, nil
}

// SetPresenceOffline marks one user's presence for a game offline.
func (s *Store) SetPresenceOffline(ctx context.Context, userID, gameID uuid.UUID) error {
	q := `UPDATE players SET status='offline', updated_at=NOW() WHERE user_id=$1 AND game_id=$2`
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, userID, gameID)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("set presence offline: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set presence offline: %w", ErrNotFound)
	}
	return nil
}

// MarkStalePresenceOffline flips every available row last updated before cutoff to offline
// and returns the number of rows changed.
func (s *Store) MarkStalePresenceOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `
		UPDATE players
		SET status='offline'
		WHERE status IN ('online', 'looking') AND updated_at < $1
	`
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, cutoff)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("mark stale presence: %w", err)
	}
	return affected, nil
}
