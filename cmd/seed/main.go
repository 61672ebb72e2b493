// Command seed wipes and repopulates all five tracker collections with
// sample data, then computes the leaderboard. It runs to completion and
// exits; it never merges with existing data.
package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"example.com/octofit/internal/config"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/events"
	"example.com/octofit/internal/persistence/postgres"
	"example.com/octofit/internal/seed"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.PostgresURL); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	var publisher domain.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()
		publisher = producer
	}

	randSeed := cfg.SeedRandSeed
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(randSeed))

	seeder := seed.NewSeeder(postgres.NewStore(pool), publisher, rng, logger)
	summary, err := seeder.Run(ctx)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.Int("teams", summary.Teams),
		zap.Int("users", summary.Users),
		zap.Int("workouts", summary.Workouts),
		zap.Int("activities", summary.Activities),
		zap.Int("leaderboard_entries", summary.LeaderboardEntries),
	)
}
