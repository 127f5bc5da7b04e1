package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/jason-s-yu/squadup/internal/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStoreReturnsClosableClient(t *testing.T) {
	mr := miniredis.RunT(t)
	logger, _ := test.NewNullLogger()

	store, rdb := snapshotStore(context.Background(), &config.Config{RedisAddr: mr.Addr()}, logger)
	require.NotNil(t, rdb)
	assert.IsType(t, &cache.RedisSnapshotStore{}, store)
	require.NoError(t, rdb.Close())
}

func TestSnapshotStoreMemoryFallback(t *testing.T) {
	logger, hook := test.NewNullLogger()

	store, rdb := snapshotStore(context.Background(), &config.Config{}, logger)
	assert.Nil(t, rdb)
	assert.IsType(t, &cache.MemorySnapshotStore{}, store)
	assert.Contains(t, hook.LastEntry().Message, "kept in memory")

	store, rdb = snapshotStore(context.Background(), &config.Config{RedisAddr: "127.0.0.1:1"}, logger)
	assert.Nil(t, rdb)
	assert.IsType(t, &cache.MemorySnapshotStore{}, store)
}

func TestInitAuthWithoutKeys(t *testing.T) {
	logger, hook := test.NewNullLogger()
	require.NoError(t, initAuth(&config.Config{}, logger))
	assert.Contains(t, hook.LastEntry().Message, "will not survive a restart")

	err := initAuth(&config.Config{AuthPrivateKeyPath: "/nonexistent/key", AuthPublicKeyPath: "/nonexistent/pub"}, logger)
	assert.Error(t, err)
}
