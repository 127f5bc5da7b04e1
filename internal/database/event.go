// internal/database/event.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/squadup/internal/models"
)

const eventSelect = `
	SELECT e.id, e.game_id, e.community_id, e.title, e.description, e.starts_at, e.ends_at, e.capacity,
		(SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id)
	FROM events e
`

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.GameID, &e.CommunityID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt,
		&e.Capacity, &e.ParticipantCount)
	return e, err
}

// ListEvents returns events ordered by start time. upcomingOnly hides events that already started.
func (s *Store) ListEvents(ctx context.Context, gameID *uuid.UUID, upcomingOnly bool) ([]models.Event, error) {
	q := eventSelect + `
		WHERE ($1::uuid IS NULL OR e.game_id=$1)
		  AND (NOT $2 OR e.starts_at >= NOW())
		ORDER BY e.starts_at
	`
	rows, err := s.db.Query(ctx, q, gameID, upcomingOnly)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.Event, error) { return scanEvent(r) })
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error) {
	e, err := scanEvent(s.db.QueryRow(ctx, eventSelect+` WHERE e.id=$1`, id))
	if err != nil {
		return models.Event{}, fmt.Errorf("get event %v: %w", id, translate(err))
	}
	return e, nil
}

// JoinEvent adds userID to the event. Joining twice is a no-op; a full event yields ErrConflict.
func (s *Store) JoinEvent(ctx context.Context, eventID, userID uuid.UUID) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var capacity int
		if err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id=$1 FOR UPDATE`, eventID).Scan(&capacity); err != nil {
			return err
		}

		var already bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id=$1 AND user_id=$2)`,
			eventID, userID).Scan(&already); err != nil {
			return err
		}
		if already {
			return nil
		}

		if capacity > 0 {
			var count int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM event_participants WHERE event_id=$1`, eventID).Scan(&count); err != nil {
				return err
			}
			if count >= capacity {
				return fmt.Errorf("%w: event is full", ErrConflict)
			}
		}

		_, err := tx.Exec(ctx, `INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`, eventID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return fmt.Errorf("join event: %w", err)
		}
		return fmt.Errorf("join event: %w", translate(err))
	}
	return nil
}

func (s *Store) LeaveEvent(ctx context.Context, eventID, userID uuid.UUID) error {
	var affected int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM event_participants WHERE event_id=$1 AND user_id=$2`, eventID, userID)
		affected = ct.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("leave event: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("leave event: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) ListEventParticipants(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipant, error) {
	q := `SELECT event_id, user_id, joined_at FROM event_participants WHERE event_id=$1 ORDER BY joined_at`
	rows, err := s.db.Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event participants: %w", err)
	}
	out, err := collect(rows, func(r pgx.Rows) (models.EventParticipant, error) {
		var p models.EventParticipant
		err := r.Scan(&p.EventID, &p.UserID, &p.JoinedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list event participants: %w", err)
	}
	return out, nil
}
