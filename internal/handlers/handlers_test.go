package handlers

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/auth"
	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/jason-s-yu/squadup/internal/database"
	"github.com/jason-s-yu/squadup/internal/lobby"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/jason-s-yu/squadup/internal/presence"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestMain(m *testing.M) {
	if err := auth.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeRepo implements the parts of Repository the tests touch. Anything else panics on the nil embed.
type fakeRepo struct {
	Repository

	mu        sync.Mutex
	games     map[string]models.Game
	players   map[uuid.UUID][]models.Player
	presence  []models.Player
	follows   [][2]uuid.UUID
	eventFull bool

	communities []models.Community
	guides      []models.PlayGuide
	lfg         []models.LFGPost
}

func newFakeRepo(games ...models.Game) *fakeRepo {
	f := &fakeRepo{games: map[string]models.Game{}, players: map[uuid.UUID][]models.Player{}}
	for _, g := range games {
		f.games[g.Slug] = g
	}
	return f
}

func (f *fakeRepo) ListGames(_ context.Context, filter models.GameFilter) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Game{}
	for _, g := range f.games {
		if filter.Query != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeRepo) GetGameBySlug(_ context.Context, slug string) (models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[slug]
	if !ok {
		return models.Game{}, fmt.Errorf("get game %q: %w", slug, database.ErrNotFound)
	}
	return g, nil
}

func (f *fakeRepo) GetGameByID(_ context.Context, id uuid.UUID) (models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Game{}, fmt.Errorf("get game %v: %w", id, database.ErrNotFound)
}

func (f *fakeRepo) ListGameVersions(context.Context, uuid.UUID) ([]models.GameVersion, error) {
	return []models.GameVersion{}, nil
}

func (f *fakeRepo) ListAvailablePlayers(_ context.Context, gameID uuid.UUID) ([]models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Player(nil), f.players[gameID]...), nil
}

func (f *fakeRepo) UpsertPresence(_ context.Context, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	p.UpdatedAt = time.Now()
	f.presence = append(f.presence, *p)
	return nil
}

func (f *fakeRepo) SetPresenceOffline(_ context.Context, userID, gameID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.presence {
		if p.UserID == userID && p.GameID == gameID {
			return nil
		}
	}
	return fmt.Errorf("set presence offline: %w", database.ErrNotFound)
}

func (f *fakeRepo) Follow(_ context.Context, follower, followee uuid.UUID) error {
	if follower == followee {
		return fmt.Errorf("follow: %w: cannot follow yourself", database.ErrInvalid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, [2]uuid.UUID{follower, followee})
	return nil
}

func (f *fakeRepo) JoinEvent(context.Context, uuid.UUID, uuid.UUID) error {
	if f.eventFull {
		return fmt.Errorf("join event: %w: event is full", database.ErrConflict)
	}
	return nil
}

func (f *fakeRepo) ListCommunities(_ context.Context, gameID *uuid.UUID) ([]models.Community, error) {
	out := []models.Community{}
	for _, c := range f.communities {
		if gameID == nil || (c.GameID != nil && *c.GameID == *gameID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetCommunityBySlug(_ context.Context, slug string) (models.Community, error) {
	for _, c := range f.communities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Community{}, fmt.Errorf("get community %q: %w", slug, database.ErrNotFound)
}

func (f *fakeRepo) ListPlayGuides(_ context.Context, gameID *uuid.UUID) ([]models.PlayGuide, error) {
	out := []models.PlayGuide{}
	for _, g := range f.guides {
		if gameID == nil || g.GameID == *gameID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetPlayGuideBySlug(_ context.Context, slug string) (models.PlayGuide, error) {
	for _, g := range f.guides {
		if g.Slug == slug {
			return g, nil
		}
	}
	return models.PlayGuide{}, fmt.Errorf("get play guide %q: %w", slug, database.ErrNotFound)
}

func (f *fakeRepo) ListLFGPosts(_ context.Context, gameID *uuid.UUID, _ int) ([]models.LFGPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LFGPost{}
	for _, p := range f.lfg {
		if gameID == nil || p.GameID == *gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateLFGPost(_ context.Context, p *models.LFGPost) error {
	if strings.TrimSpace(p.Message) == "" {
		return fmt.Errorf("create lfg post: %w: message is required", database.ErrInvalid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	if p.SlotsOpen <= 0 {
		p.SlotsOpen = 1
	}
	f.lfg = append(f.lfg, *p)
	return nil
}

func (f *fakeRepo) DeleteLFGPost(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.lfg {
		if p.ID == id && p.UserID == userID {
			f.lfg = append(f.lfg[:i], f.lfg[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete lfg post: %w", database.ErrNotFound)
}

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func sampleGame(slug string) models.Game {
	return models.Game{ID: uuid.New(), Slug: slug, Title: strings.ToUpper(slug), Platforms: []string{"pc"}}
}

type testEnv struct {
	repo    *fakeRepo
	store   *cache.MemorySnapshotStore
	lobbies *lobby.Registry
	poller  *presence.Poller
	router  http.Handler
}

func newTestEnv(t *testing.T, repo *fakeRepo) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, repo, cache.NewMemorySnapshotStore())
}

// newTestEnvWithStore builds a fresh registry and router over an existing snapshot store.
func newTestEnvWithStore(t *testing.T, repo *fakeRepo, store *cache.MemorySnapshotStore) *testEnv {
	t.Helper()
	logger := testLogger()
	env := &testEnv{
		repo:  repo,
		store: store,
	}
	env.lobbies = lobby.NewRegistry(env.store, logger, time.Minute)
	env.poller = presence.NewPoller(repo, 20*time.Millisecond, time.Second, logger)
	t.Cleanup(env.poller.Close)
	env.router = NewRouter(Deps{
		Logger:  logger,
		Repo:    repo,
		Lobbies: env.lobbies,
		Poller:  env.poller,
		Colors:  stubColors{colors: []string{"#ff0000"}},
	})
	return env
}

// do issues a request against the router, optionally carrying a session cookie.
func (e *testEnv) do(method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

type stubColors struct {
	colors []string
	err    error
}

func (s stubColors) Extract(context.Context, string) ([]string, error) {
	return s.colors, s.err
}

func sessionID(t *testing.T, c *http.Cookie) string {
	t.Helper()
	sub, err := auth.AuthenticateJWT(c.Value)
	if err != nil {
		t.Fatalf("session cookie does not verify: %v", err)
	}
	return sub
}

// writeSessionKeys stores a fresh ed25519 pair as PEM files and returns their paths.
func writeSessionKeys(t *testing.T) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	privPath, pubPath := filepath.Join(dir, "session.key"), filepath.Join(dir, "session.pub")
	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644); err != nil {
		t.Fatal(err)
	}
	return privPath, pubPath
}
