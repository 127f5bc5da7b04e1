// cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/squadup/internal/config"
	"github.com/jason-s-yu/squadup/internal/database"
	"github.com/jason-s-yu/squadup/internal/seed"
	"github.com/jason-s-yu/squadup/internal/upstream"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "path to the game catalog YAML file")
	enrich := flag.Bool("enrich", false, "fill missing fields from the metadata API (METADATA_BASE_URL)")
	dryRun := flag.Bool("dry-run", false, "resolve the catalog without writing to the database")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	cat, err := seed.LoadCatalogFile(*catalogPath)
	if err != nil {
		logger.Fatalf("catalog: %v", err)
	}
	logger.Infof("loaded %d games from %s", len(cat.Games), *catalogPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var meta seed.JSONGetter
	if *enrich {
		if cfg.MetadataBaseURL == "" {
			logger.Fatal("-enrich requires METADATA_BASE_URL")
		}
		key := cfg.MetadataAPIKey
		meta = upstream.NewClient(upstream.WithHeaderProvider(func() map[string]string {
			if key == "" {
				return nil
			}
			return map[string]string{"Authorization": "Bearer " + key}
		}))
	}

	var store seed.GameWriter
	if !*dryRun {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		s := database.NewStore(pool)
		if err := s.Migrate(ctx); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		store = s
	}

	res, err := seed.NewSeeder(store, meta, cfg.MetadataBaseURL, logger).Run(ctx, cat, *dryRun)
	logger.WithFields(logrus.Fields{
		"upserted": res.Upserted,
		"enriched": res.Enriched,
		"failed":   res.Failed,
		"dry_run":  *dryRun,
	}).Info("seed finished")
	if err != nil {
		logger.Errorf("seed: %v", err)
		stop()
		os.Exit(1)
	}
}
