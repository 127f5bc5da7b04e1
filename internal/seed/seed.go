// Package seed loads a YAML game catalog, optionally enriches it from the metadata API
// and upserts the result into the games table.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Entry is one game of the catalog file.
type Entry struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	CoverURL    string   `yaml:"cover_url"`
	HeroURL     string   `yaml:"hero_url"`
	Platforms   []string `yaml:"platforms"`
	Genres      []string `yaml:"genres"`
	Tags        []string `yaml:"tags"`
}

type Catalog struct {
	Games []Entry `yaml:"games"`
}

// Metadata is the metadata API's description of a game.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CoverURL    string   `json:"cover_url"`
	HeroURL     string   `json:"hero_url"`
	Platforms   []string `json:"platforms"`
	Genres      []string `json:"genres"`
}

// JSONGetter performs GET requests against the metadata API.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// GameWriter persists games.
type GameWriter interface {
	UpsertGame(ctx context.Context, g *models.Game) error
}

// LoadCatalog parses and validates a catalog. Missing slugs are derived from titles.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]int, len(cat.Games))
	for i := range cat.Games {
		e := &cat.Games[i]
		e.Title = strings.TrimSpace(e.Title)
		if e.Title == "" {
			return nil, fmt.Errorf("catalog entry %d: title is required", i)
		}
		e.Slug = strings.TrimSpace(e.Slug)
		if e.Slug == "" {
			e.Slug = Slugify(e.Title)
		}
		if e.Slug == "" {
			return nil, fmt.Errorf("catalog entry %d: title %q yields an empty slug, set slug explicitly", i, e.Title)
		}
		if prev, dup := seen[e.Slug]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q (first at %d)", i, e.Slug, prev)
		}
		seen[e.Slug] = i
	}
	return &cat, nil
}

func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// Seeder writes a catalog into the store.
type Seeder struct {
	store    GameWriter
	meta     JSONGetter
	metaBase string
	logger   *logrus.Logger
}

// NewSeeder builds a seeder. Enrichment is skipped when meta is nil or metaBase is empty.
func NewSeeder(store GameWriter, meta JSONGetter, metaBase string, logger *logrus.Logger) *Seeder {
	return &Seeder{store: store, meta: meta, metaBase: strings.TrimRight(metaBase, "/"), logger: logger}
}

type Result struct {
	Upserted int
	Enriched int
	Failed   int
}

// Run upserts every catalog entry. A failing entry is logged and skipped; the returned
// error reports how many failed. dryRun resolves everything but writes nothing.
func (s *Seeder) Run(ctx context.Context, cat *Catalog, dryRun bool) (Result, error) {
	var res Result
	for _, e := range cat.Games {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log := s.logger.WithField("slug", e.Slug)

		g := e.toGame()
		if s.meta != nil && s.metaBase != "" {
			md, err := s.fetchMetadata(ctx, e.Slug)
			if err != nil {
				log.WithError(err).Warn("metadata lookup failed, using catalog values")
			} else {
				merge(&g, md)
				res.Enriched++
			}
		}

		if dryRun {
			log.WithField("title", g.Title).Info("dry run: would upsert game")
			continue
		}
		if err := s.store.UpsertGame(ctx, &g); err != nil {
			log.WithError(err).Error("failed to upsert game")
			res.Failed++
			continue
		}
		res.Upserted++
		log.WithField("id", g.ID).Info("upserted game")
	}

	if res.Failed > 0 {
		return res, fmt.Errorf("%d of %d games failed to seed", res.Failed, len(cat.Games))
	}
	return res, nil
}

func (s *Seeder) fetchMetadata(ctx context.Context, slug string) (Metadata, error) {
	var md Metadata
	err := s.meta.GetJSON(ctx, s.metaBase+"/games/"+url.PathEscape(slug), &md)
	return md, err
}

func (e Entry) toGame() models.Game {
	return models.Game{
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		CoverURL:    e.CoverURL,
		HeroURL:     e.HeroURL,
		Platforms:   e.Platforms,
		Genres:      e.Genres,
		Tags:        e.Tags,
	}
}

// merge fills fields the catalog left empty. Catalog values always win.
func merge(g *models.Game, md Metadata) {
	if g.Description == "" {
		g.Description = md.Description
	}
	if g.CoverURL == "" {
		g.CoverURL = md.CoverURL
	}
	if g.HeroURL == "" {
		g.HeroURL = md.HeroURL
	}
	if len(g.Platforms) == 0 {
		g.Platforms = md.Platforms
	}
	if len(g.Genres) == 0 {
		g.Genres = md.Genres
	}
}
