package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/snapcook/backend/config"
	"github.com/pageza/snapcook/backend/internal/database"
	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/types"
)

// Concurrent upserts in flight. Each one is an embedding call.
const defaultWorkers = 4

func main() {
	file := flag.String("file", "recipes.json", "JSON array of recipe records")
	workers := flag.Int("workers", defaultWorkers, "concurrent upserts")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := log.Logger.WithContext(context.Background())

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	embedder, err := service.NewOpenAIClient(service.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create embedder")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open recipe file")
	}
	defer f.Close()

	loaded, skipped, err := seed(ctx, f, service.NewPGVectorStore(db.DB, embedder), *workers)
	if err != nil {
		log.Fatal().Err(err).Int("loaded", loaded).Msg("seeding failed")
	}
	log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("recipes indexed")
}

// seed upserts every usable record from r. The first failed upsert stops the
// run; records already written stay written.
func seed(ctx context.Context, r io.Reader, store service.VectorStore, workers int) (loaded, skipped int, err error) {
	var recipes []types.Recipe
	if err := json.NewDecoder(r).Decode(&recipes); err != nil {
		return 0, 0, fmt.Errorf("decoding recipes: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	var count atomic.Int64
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for _, recipe := range recipes {
		if strings.TrimSpace(recipe.ID) == "" || strings.TrimSpace(recipe.Ingredients) == "" {
			skipped++
			continue
		}
		grp.Go(func() error {
			err := store.Upsert(gctx, recipe.ID, recipe.Ingredients, types.RecipeMetadata{
				Title:        recipe.Title,
				Description:  recipe.Description,
				Instructions: recipe.Instructions,
				Minutes:      recipe.Minutes,
			})
			if err != nil {
				return fmt.Errorf("recipe %s: %w", recipe.ID, err)
			}
			count.Add(1)
			return nil
		})
	}
	err = grp.Wait()
	return int(count.Load()), skipped, err
}
