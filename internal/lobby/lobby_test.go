package lobby

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*models.LobbySnapshot, error) {
	return nil, errors.New("unavailable")
}

func (failingStore) Save(context.Context, string, models.LobbySnapshot) error {
	return errors.New("unavailable")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHolderPersistsEveryMutation(t *testing.T) {
	store := cache.NewMemorySnapshotStore()
	h := NewHolder("s1", Initial(), DefaultCountdown, store, quietLogger(), nil)
	ctx := context.Background()

	_, err := h.Dispatch(ctx, SetShowLobby{Visible: true})
	require.NoError(t, err)
	g := testGame()
	st, err := h.Dispatch(ctx, SetGame{Game: g})
	require.NoError(t, err)
	assert.Equal(t, StatusSearching, st.Status)

	snap, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.ShowLobby)
	assert.Equal(t, g.ID, snap.Game.ID)

	_, err = h.Dispatch(ctx, SetShowLobby{Visible: false})
	require.NoError(t, err)
	snap, _ = store.Load(ctx, "s1")
	assert.Nil(t, snap.Game)
	assert.False(t, snap.ShowLobby)
}

func TestHolderRejectsInvalidActionWithoutPersisting(t *testing.T) {
	store := cache.NewMemorySnapshotStore()
	h := NewHolder("s1", Initial(), DefaultCountdown, store, quietLogger(), nil)

	_, err := h.Dispatch(context.Background(), SetMatchmakingState{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	snap, _ := store.Load(context.Background(), "s1")
	assert.Nil(t, snap)
	assert.Equal(t, StatusIdle, h.State().Status)
}

func TestHolderSurvivesStoreFailure(t *testing.T) {
	h := NewHolder("s1", Initial(), DefaultCountdown, failingStore{}, quietLogger(), nil)
	st, err := h.Dispatch(context.Background(), SetGame{Game: testGame()})
	require.NoError(t, err)
	assert.Equal(t, StatusSearching, st.Status)
}

func TestHolderCountdownFollowsSearching(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	h := NewHolder("s1", Initial(), 15*time.Minute, nil, quietLogger(), clock.Now)
	ctx := context.Background()

	assert.Nil(t, h.View().Countdown, "idle lobby has no countdown")

	_, err := h.Dispatch(ctx, SetGame{Game: testGame()})
	require.NoError(t, err)
	v := h.View()
	require.NotNil(t, v.Countdown)
	assert.Equal(t, "15:00", v.Countdown.Display)

	clock.Advance(90 * time.Second)
	assert.Equal(t, "13:30", h.View().Countdown.Display)

	// picking another game while searching keeps the clock
	_, err = h.Dispatch(ctx, SetGame{Game: testGame()})
	require.NoError(t, err)
	assert.Equal(t, "13:30", h.View().Countdown.Display)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, "13:30", h.View().Countdown.Display)

	_, err = h.Dispatch(ctx, SetShowLobby{Visible: false})
	require.NoError(t, err)
	assert.Nil(t, h.View().Countdown)
}

func TestHolderSubscribeGetsLatest(t *testing.T) {
	h := NewHolder("s1", Initial(), DefaultCountdown, nil, quietLogger(), nil)
	ch, cancel := h.Subscribe()
	defer cancel()
	ctx := context.Background()

	_, _ = h.Dispatch(ctx, OpenModal{})
	_, _ = h.Dispatch(ctx, SetGame{Game: testGame()})

	select {
	case st := <-ch:
		assert.True(t, st.ModalOpen)
		assert.Equal(t, StatusSearching, st.Status)
	case <-time.After(time.Second):
		t.Fatal("no state delivered")
	}

	cancel()
	_, _ = h.Dispatch(ctx, CloseModal{})
	select {
	case st := <-ch:
		t.Fatalf("unexpected delivery after cancel: %+v", st)
	default:
	}
}

func TestRegistryRestoresFromSnapshot(t *testing.T) {
	store := cache.NewMemorySnapshotStore()
	g := testGame()
	require.NoError(t, store.Save(context.Background(), "s1", models.LobbySnapshot{Game: g, ShowLobby: true}))

	reg := NewRegistry(store, quietLogger(), DefaultCountdown)
	h, err := reg.Get(context.Background(), "s1")
	require.NoError(t, err)

	st := h.State()
	assert.True(t, st.ShowLobby)
	assert.Equal(t, StatusSearching, st.Status)
	assert.Equal(t, g.ID, st.Game.ID)
	assert.NotNil(t, h.View().Countdown)

	again, err := reg.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, h, again)
	assert.Equal(t, 1, reg.Len())

	fresh, err := reg.Get(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, Initial(), fresh.State())
}

func TestRegistryLoadError(t *testing.T) {
	reg := NewRegistry(failingStore{}, quietLogger(), DefaultCountdown)
	_, err := reg.Get(context.Background(), "s1")
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistryEvict(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	reg := NewRegistry(cache.NewMemorySnapshotStore(), quietLogger(), DefaultCountdown)
	reg.now = clock.Now

	_, err := reg.Get(context.Background(), "idle")
	require.NoError(t, err)
	watched, err := reg.Get(context.Background(), "watched")
	require.NoError(t, err)
	_, cancel := watched.Subscribe()
	defer cancel()

	clock.Advance(time.Hour)
	assert.Equal(t, 1, reg.Evict(30*time.Minute))
	assert.Equal(t, 1, reg.Len())

	reg.Delete("watched")
	assert.Zero(t, reg.Len())
}
