package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/cache"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/database"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/providers/geolocation"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/application/services"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/redis"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/scheduler"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/config"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		workers     int
		batchSize   int
		maxListings int
		schedule    string
	)
	flag.IntVar(&workers, "workers", cfg.Backfill.Workers, "Number of concurrent geocoding workers")
	flag.IntVar(&batchSize, "batch-size", cfg.Backfill.BatchSize, "Listings fetched per batch")
	flag.IntVar(&maxListings, "max", 0, "Stop after this many listings (0 = all)")
	flag.StringVar(&schedule, "schedule", cfg.Backfill.Schedule, `Cron spec to run repeatedly, e.g. "@every 6h"; empty runs once`)
	batchDelay := flag.Duration("batch-delay", cfg.Backfill.BatchDelay, "Pause between batches")
	flag.Parse()

	observability.InitLogger("dhikcar-backfill", cfg.Environment)

	// Setup DB
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	// Claims keep concurrent runs and API instances off the same listing
	var claims providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without claims")
		} else {
			defer redisClient.Close()
			claims = cache.NewRedisAdapter(redisClient)
		}
	}

	resolver, err := geolocation.NewResolver(&cfg.Geolocation, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create geolocation provider")
	}

	// Setup service
	listings := database.NewListingAdapter(pgClient, nil)
	backfiller := services.NewCoordinateBackfillService(listings, resolver, claims, services.CoordinateBackfillConfig{
		Timeout:  cfg.Backfill.Timeout,
		ClaimTTL: cfg.Backfill.ClaimTTL,
	}, nil)
	sweep := services.NewCoordinateSweepService(listings, backfiller, services.CoordinateSweepConfig{
		BatchSize:   batchSize,
		BatchDelay:  *batchDelay,
		Workers:     workers,
		MaxListings: maxListings,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := func(ctx context.Context) error {
		summary, err := sweep.Run(ctx)
		if err != nil {
			return err
		}
		log.Info().
			Int("batches", summary.Batches).
			Int("scanned", summary.Scanned).
			Int("updated", summary.Updated).
			Int("skipped", summary.Skipped).
			Int("claimed_elsewhere", summary.Claimed).
			Int("failed", summary.Failed).
			Dur("duration", summary.Duration).
			Msg("coordinate backfill complete")
		return nil
	}

	if schedule == "" {
		log.Info().Int("workers", workers).Int("batch_size", batchSize).Msg("starting coordinate backfill")
		if err := run(ctx); err != nil {
			log.Error().Err(err).Msg("coordinate backfill failed")
			os.Exit(1)
		}
		return
	}

	s := scheduler.New("coordinate-backfill", schedule, run, log.Logger)
	if err := s.Start(ctx, true); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	<-ctx.Done()
	s.Stop()
}
