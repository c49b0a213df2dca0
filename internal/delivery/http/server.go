package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/config"
	"github.com/trackmap-service/internal/delivery/http/handler"
	"github.com/trackmap-service/internal/delivery/http/middleware"
)

// Server - Fiber HTTP server
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	sessionHandler     *handler.SessionHandler
	feedHandler        *handler.FeedHandler
	replayHandler      *handler.ReplayHandler
	interactionHandler *handler.InteractionHandler
	geozoneHandler     *handler.GeozoneHandler
}

// NewServer - creates a new HTTP server
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessionHandler *handler.SessionHandler,
	feedHandler *handler.FeedHandler,
	replayHandler *handler.ReplayHandler,
	interactionHandler *handler.InteractionHandler,
	geozoneHandler *handler.GeozoneHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "TrackMap Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:                app,
		config:             cfg,
		logger:             logger,
		sessionHandler:     sessionHandler,
		feedHandler:        feedHandler,
		replayHandler:      replayHandler,
		interactionHandler: interactionHandler,
		geozoneHandler:     geozoneHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Session lifecycle
	sessions := api.Group("/sessions")
	sessions.Post("/", s.sessionHandler.Create)
	sessions.Get("/:id", s.sessionHandler.Get)
	sessions.Delete("/:id", s.sessionHandler.Delete)

	// Feed and scene
	sessions.Post("/:id/feed", s.feedHandler.Ingest)
	sessions.Get("/:id/scene", s.sessionHandler.GetScene)
	sessions.Delete("/:id/scene", s.sessionHandler.ClearScene)
	sessions.Get("/:id/detail", s.sessionHandler.GetDetail)

	// Replay and interaction
	sessions.Post("/:id/replay", s.replayHandler.Control)
	sessions.Post("/:id/mouse", s.interactionHandler.Mouse)

	// Geozone editing within a session
	sessions.Post("/:id/geozones/:zone_id/edit", s.geozoneHandler.BeginEdit)
	sessions.Delete("/:id/geozones/edit", s.geozoneHandler.EndEdit)

	// Geozone CRUD
	geozones := api.Group("/geozones")
	geozones.Post("/", s.geozoneHandler.Create)
	geozones.Get("/", s.geozoneHandler.List)
	geozones.Get("/:id", s.geozoneHandler.Get)
	geozones.Put("/:id", s.geozoneHandler.Update)
	geozones.Delete("/:id", s.geozoneHandler.Delete)
}

// Start - starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful HTTP server shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
