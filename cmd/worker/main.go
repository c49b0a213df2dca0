package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/config"
	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
	"github.com/trackmap-service/internal/interaction"
	"github.com/trackmap-service/internal/pkg/logger"
	"github.com/trackmap-service/internal/replay"
	"github.com/trackmap-service/internal/repository/cache"
	redisRepo "github.com/trackmap-service/internal/repository/redis"
	"github.com/trackmap-service/internal/scene"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/worker"
	"github.com/trackmap-service/internal/worker/feedingest"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New("trackmap-worker", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Feed Ingest Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	// 3. Connect to Redis (cache pool + dedicated stream consumer pool)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	streamClient, err := cache.NewRedisStreams(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis streams", zap.Error(err))
	}
	defer func() {
		if err := streamClient.Close(); err != nil {
			log.Error("Failed to close Redis streams connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(streamClient, log)

	// 5. Initialize session store, decoder and ingest pipeline
	sessions := session.NewStore(session.Config{
		Scene: scene.Config{
			DefaultCenter:       domain.GeoPoint{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLon},
			DefaultZoom:         cfg.Map.DefaultZoom,
			MinZoneRadiusM:      cfg.Geozone.MinRadiusM,
			MaxZoneRadiusM:      cfg.Geozone.MaxRadiusM,
			PointRadiusDefaultM: cfg.Geozone.PointRadiusM,
			SweptRadiusDefaultM: cfg.Geozone.SweptRadiusM,
		},
		Replay: replay.Config{
			IntervalMS:      cfg.Replay.IntervalMS,
			AutoSkipRadiusM: cfg.Replay.AutoSkipRadiusM,
			SinglePushpin:   cfg.Replay.SinglePushpin,
		},
		Interaction: interaction.Config{
			PolygonVertexCount: cfg.Geozone.PolygonVertexCount,
		},
		ViewWidthPx: cfg.Map.ViewWidthPx,
	}, log)

	decoder := feed.NewDecoder(feed.Options{
		MaxPushpins:       cfg.Map.MaxPushpins,
		ShowPushpins:      cfg.Map.ShowPushpins,
		ShowRoute:         cfg.Map.ShowRoute,
		DefaultRouteColor: cfg.Map.RouteColor,
		IconSelector:      scene.NewRegistry().Lookup(cfg.Map.IconSelector),
		DefaultIcon:       scene.DefaultIcon,
	}, log)

	feedUC := usecase.NewFeedUseCase(sessions, cacheRepo, streamRepo, decoder, log, cfg.Cache.SceneCacheTTL)

	// 6. Initialize workers
	ingestWorker := feedingest.NewFeedIngestWorker(
		streamRepo,
		sessions,
		feedUC,
		cfg.Worker.ConsumerGroup,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(ingestWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
