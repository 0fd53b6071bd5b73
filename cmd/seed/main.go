package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/bincan-backend/internal/catalog"
	"github.com/stemsi/bincan-backend/internal/config"
	"github.com/stemsi/bincan-backend/internal/database"
	"github.com/stemsi/bincan-backend/internal/logger"
	"github.com/stemsi/bincan-backend/internal/model"
	"github.com/stemsi/bincan-backend/internal/repository"
	"github.com/stemsi/bincan-backend/internal/service"
)

// seed creates one exercise per catalog category and difficulty in the
// configured store and prints their ids, for local UI work.
func main() {
	perPair := flag.Int("n", 1, "exercises per category and difficulty")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.StoreDriver == config.StoreMemory {
		log.Fatal().Msg("STORE_DRIVER=memory would discard the seed; use postgres or redis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conns, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to backends")
	}
	defer conns.Close()

	var repo repository.ExerciseRepository
	if cfg.StoreDriver == config.StorePostgres {
		repo = repository.NewPostgresExerciseRepository(conns.Pool)
	} else {
		repo = repository.NewRedisExerciseRepository(conns.Redis, cfg.ExerciseTTL)
	}

	cat, err := catalog.Load(cfg.ContentFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load content catalog")
	}
	svc := service.NewExerciseService(repo, cat, nil, nil, log)

	difficulties := []model.Difficulty{model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced}

	fmt.Printf("=== Seeding %d exercises ===\n", len(model.Categories)*len(difficulties)*(*perPair))

	successCount := 0
	for _, c := range model.Categories {
		for _, d := range difficulties {
			for range *perPair {
				e, err := svc.CreateFromCategory(ctx, model.CreateFromCategoryRequest{Category: c, Difficulty: d})
				if err != nil {
					fmt.Printf("Error creating %s/%s: %v\n", c, d, err)
					continue
				}
				successCount++
				fmt.Printf("%-26s %-13s %s (%d blanks)\n", c, d, e.ID, len(e.Blanks))
			}
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d exercises.\n", successCount)
}
