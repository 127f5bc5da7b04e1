// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/squadup/internal/auth"
	"github.com/jason-s-yu/squadup/internal/cache"
	"github.com/jason-s-yu/squadup/internal/config"
	"github.com/jason-s-yu/squadup/internal/database"
	"github.com/jason-s-yu/squadup/internal/handlers"
	"github.com/jason-s-yu/squadup/internal/imagecolors"
	"github.com/jason-s-yu/squadup/internal/lobby"
	"github.com/jason-s-yu/squadup/internal/palette"
	"github.com/jason-s-yu/squadup/internal/presence"
	"github.com/jason-s-yu/squadup/internal/upstream"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	lobbyIdleTimeout   = 30 * time.Minute
	lobbyEvictInterval = 5 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	configureLogger(logger, cfg)

	if err := initAuth(cfg, logger); err != nil {
		logger.Fatalf("auth init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	store := database.NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	snapshots, rdb := snapshotStore(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	poller := presence.NewPoller(store, cfg.PollInterval, cfg.PollTimeout, logger)
	defer poller.Close()
	go presence.NewSweeper(store, cfg.StaleAfter, cfg.SweepInterval, logger).Run(ctx)

	lobbies := lobby.NewRegistry(snapshots, logger, cfg.LobbyCountdown)
	go lobbies.RunEvictor(ctx, lobbyEvictInterval, lobbyIdleTimeout)

	imageClient := upstream.NewClient(
		upstream.WithTimeout(cfg.ImageFetchTimeout),
		upstream.WithMaxBodySize(cfg.ImageMaxBytes),
	)
	colors := imagecolors.NewService(imageClient, palette.Options{})

	var origins []string
	if cfg.IsProduction() {
		origins = cfg.AllowedOrigins
	}
	router := handlers.NewRouter(handlers.Deps{
		Logger:         logger,
		Repo:           store,
		Lobbies:        lobbies,
		Poller:         poller,
		Colors:         colors,
		AllowedOrigins: origins,
	})

	addr := "127.0.0.1:" + cfg.Port
	if cfg.IsProduction() {
		// bind to all hosts in production mode
		addr = ":" + cfg.Port
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// initAuth loads the configured session keys. Without them, outside production, keys are
// generated for this process only.
func initAuth(cfg *config.Config, logger *logrus.Logger) error {
	if cfg.HasAuthKeys() {
		return auth.InitFromPath(cfg.AuthPrivateKeyPath, cfg.AuthPublicKeyPath)
	}
	logger.Warn("AUTH_PRIVATE_KEY_PATH not set, sessions will not survive a restart")
	return auth.Init()
}

// snapshotStore connects to Redis. Outside production an unreachable Redis falls back to process memory.
// The returned client is nil when snapshots are kept in memory.
func snapshotStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (cache.SnapshotStore, *redis.Client) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is empty, lobby snapshots are kept in memory")
		return cache.NewMemorySnapshotStore(), nil
	}
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		if cfg.IsProduction() {
			logger.Fatalf("redis: %v", err)
		}
		logger.WithError(err).Warn("redis unavailable, lobby snapshots are kept in memory")
		return cache.NewMemorySnapshotStore(), nil
	}
	return cache.NewRedisSnapshotStore(rdb, cfg.LobbySnapshotTTL), rdb
}
