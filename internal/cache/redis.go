// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/redis/go-redis/v9"
)

// SnapshotKeyPrefix namespaces persisted lobby snapshots.
const SnapshotKeyPrefix = "lobby:"

// SnapshotStore persists a session's lobby snapshot between visits.
// Load returns (nil, nil) when nothing is stored for the session.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*models.LobbySnapshot, error)
	Save(ctx context.Context, sessionID string, snap models.LobbySnapshot) error
}

// ConnectRedis creates a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisSnapshotStore keeps snapshots as JSON strings under lobby:<session> with a sliding TTL.
type RedisSnapshotStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSnapshotStore(rdb redis.Cmdable, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSnapshotStore) Load(ctx context.Context, sessionID string) (*models.LobbySnapshot, error) {
	data, err := s.rdb.Get(ctx, SnapshotKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET lobby snapshot for %s: %w", sessionID, err)
	}

	var snap models.LobbySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lobby snapshot for %s: %w", sessionID, err)
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, sessionID string, snap models.LobbySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal lobby snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, SnapshotKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET lobby snapshot for %s: %w", sessionID, err)
	}
	return nil
}

// MemorySnapshotStore is an in-process SnapshotStore used when Redis is not configured.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	snaps map[string]models.LobbySnapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]models.LobbySnapshot)}
}

func (s *MemorySnapshotStore) Load(_ context.Context, sessionID string) (*models.LobbySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return nil, nil
	}
	if snap.Game != nil {
		g := *snap.Game
		snap.Game = &g
	}
	return &snap, nil
}

func (s *MemorySnapshotStore) Save(_ context.Context, sessionID string, snap models.LobbySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Game != nil {
		g := *snap.Game
		snap.Game = &g
	}
	s.snaps[sessionID] = snap
	return nil
}
