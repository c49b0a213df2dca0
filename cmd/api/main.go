package main

// @title TrackMap Service API
// @version 1.0.0
// @description Vehicle tracking map service. Ingests tracker feeds (JSON or XML), maintains per-session map scenes with pushpins, routes and geofences, replays device tracks and drives interactive geofence editing.
// @description
// @description Capabilities:
// @description - Feed ingest with dual JSON/XML decoding and scene installation
// @description - Session scene snapshots with pushpin, route, POI and geofence layers
// @description - Track replay with pause/resume and auto-skip
// @description - Mouse-driven distance ruler and geofence vertex editing
// @description - Geofence CRUD persisted in PostgreSQL

// @contact.name API Support
// @contact.email support@trackmap-service.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/trackmap-service/docs"
	"github.com/trackmap-service/internal/config"
	httpDelivery "github.com/trackmap-service/internal/delivery/http"
	"github.com/trackmap-service/internal/delivery/http/handler"
	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
	"github.com/trackmap-service/internal/interaction"
	"github.com/trackmap-service/internal/pkg/logger"
	"github.com/trackmap-service/internal/replay"
	"github.com/trackmap-service/internal/repository/cache"
	"github.com/trackmap-service/internal/repository/postgres"
	redisRepo "github.com/trackmap-service/internal/repository/redis"
	"github.com/trackmap-service/internal/scene"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New("trackmap-api", cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting TrackMap Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	cacheRepo := cache.NewCacheRepository(redisClient)
	geozoneRepo := postgres.NewGeozoneRepository(db, log)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Initialize session store and feed decoder
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

	// 8. Initialize use cases
	feedUC := usecase.NewFeedUseCase(sessions, cacheRepo, streamRepo, decoder, log, cfg.Cache.SceneCacheTTL)
	sceneUC := usecase.NewSceneUseCase(sessions, cacheRepo, log, cfg.Cache.SceneCacheTTL)
	replayUC := usecase.NewReplayUseCase(sessions, log)
	interactionUC := usecase.NewInteractionUseCase(sessions, log)
	geozoneUC := usecase.NewGeozoneUseCase(geozoneRepo, sessions, log)

	log.Info("Use cases initialized")

	// 9. Initialize HTTP handlers and server
	sessionHandler := handler.NewSessionHandler(sceneUC, log)
	feedHandler := handler.NewFeedHandler(feedUC, log)
	replayHandler := handler.NewReplayHandler(replayUC, log)
	interactionHandler := handler.NewInteractionHandler(interactionUC, log)
	geozoneHandler := handler.NewGeozoneHandler(geozoneUC, log)

	server := httpDelivery.NewServer(
		cfg,
		log,
		sessionHandler,
		feedHandler,
		replayHandler,
		interactionHandler,
		geozoneHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Evict idle sessions in the background
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(cfg.Map.SessionMaxIdle); n > 0 {
					log.Info("Swept idle sessions", zap.Int("count", n))
				}
			}
		}
	}()

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	sweepCancel()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
