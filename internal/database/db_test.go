package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505", ConstraintName: "games_slug_key"})), ErrConflict)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23503"}), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0, 50, 200))
	assert.Equal(t, 10, clampLimit(10, 50, 200))
	assert.Equal(t, 200, clampLimit(5000, 50, 200))
}

// openTestStore connects to TEST_DATABASE_URL; tests using it are skipped when it is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewStore(pool)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func seedGame(t *testing.T, s *Store) models.Game {
	t.Helper()
	g := models.Game{
		Slug:      "test-" + uuid.NewString()[:8],
		Title:     "Test Game",
		Platforms: []string{"pc"},
		Genres:    []string{"shooter"},
	}
	require.NoError(t, s.UpsertGame(context.Background(), &g))
	require.NotEqual(t, uuid.Nil, g.ID)
	return g
}

func TestUpsertGameIsKeyedOnSlug(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := seedGame(t, s)
	again := models.Game{Slug: g.Slug, Title: "Renamed"}
	require.NoError(t, s.UpsertGame(ctx, &again))
	assert.Equal(t, g.ID, again.ID)

	got, err := s.GetGameBySlug(ctx, g.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	_, err = s.GetGameBySlug(ctx, "does-not-exist-"+uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAvailablePlayersOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := seedGame(t, s)

	upsert := func(status models.PresenceStatus) models.Player {
		p := models.Player{UserID: uuid.New(), GameID: g.ID, Platform: "pc", Status: status}
		require.NoError(t, s.UpsertPresence(ctx, &p))
		time.Sleep(5 * time.Millisecond)
		return p
	}

	lookingOld := upsert(models.PresenceLooking)
	online := upsert(models.PresenceOnline)
	upsert(models.PresenceOffline)
	lookingNew := upsert(models.PresenceLooking)

	players, err := s.ListAvailablePlayers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, online.UserID, players[0].UserID)
	assert.Equal(t, lookingNew.UserID, players[1].UserID)
	assert.Equal(t, lookingOld.UserID, players[2].UserID)

	n, err := s.MarkStalePresenceOffline(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(3))

	players, err = s.ListAvailablePlayers(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestFollowRejectsSelf(t *testing.T) {
	s := NewStore(nil)
	id := uuid.New()
	err := s.Follow(context.Background(), id, id)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestListPlayGuides(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := seedGame(t, s)

	slug := "guide-" + uuid.NewString()[:8]
	_, err := s.db.Exec(ctx, `INSERT INTO play_guides (game_id, slug, title, body) VALUES ($1, $2, $3, $4)`,
		g.ID, slug, "Duo basics", "Stick together.")
	require.NoError(t, err)

	guides, err := s.ListPlayGuides(ctx, &g.ID)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, slug, guides[0].Slug)
	assert.Equal(t, g.ID, guides[0].GameID)

	got, err := s.GetPlayGuideBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Duo basics", got.Title)

	other := uuid.New()
	guides, err = s.ListPlayGuides(ctx, &other)
	require.NoError(t, err)
	assert.NotNil(t, guides)
	assert.Empty(t, guides)
}
