package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"materialworker/config"
	"materialworker/internal/scraper"
	"materialworker/logger"
	"materialworker/services/api"
	"materialworker/services/cache"
	"materialworker/services/publisher"
	"materialworker/services/storage"
	"materialworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	scrapeCfg, err := config.LoadScrapeConfig(cfg.ScrapeConfigPath)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("path", cfg.ScrapeConfigPath).
			Msg("Failed to load supplier configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Int("suppliers", len(scrapeCfg.Suppliers)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	metrics := scraper.NewMetrics()

	// Create scrapers
	scrapers := scraper.CreateScrapers(scrapeCfg, services.Cache, metrics)
	if len(scrapers) == 0 {
		log.Fatal().Msg("No scrapers were created")
	}

	log.Info().
		Int("scraper_count", len(scrapers)).
		Msg("Created scrapers")

	aggregator := scraper.NewAggregator(scrapers, metrics)

	snapshot := storage.NewSnapshot()
	store := storage.NewStore(scrapeCfg.Output.Path)

	// Warm-start the snapshot from the last saved dataset
	if records, err := store.Load(); err != nil {
		log.Warn().Err(err).Msg("Could not read saved dataset")
	} else if len(records) > 0 {
		snapshot.Update(records)
		log.Info().
			Int("records", len(records)).
			Str("path", store.Path()).
			Msg("Loaded saved dataset")
	}

	// Create and start the worker
	w := worker.NewWorker(
		ctx,
		aggregator,
		snapshot,
		store,
		services.Publisher,
		metrics,
		cfg.ScrapeInterval,
	)

	go func() {
		log.Info().Msg("Starting material worker")
		w.Start()
	}()

	// Start the API server
	server := api.NewServer(cfg.APIAddr, aggregator, snapshot, store, metrics)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("API server exited with error")
		}
	}
	cancel()

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if cacheService == nil {
		return nil, fmt.Errorf("failed to create cache service")
	}
	services.Cache = cacheService

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if redisPublisher == nil {
		return nil, fmt.Errorf("failed to create redis publisher")
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services, nil
}
