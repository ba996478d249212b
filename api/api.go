package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/engine"
)

// Server is the API server for conversing with and inspecting the mind.
type Server struct {
	config Config
	mind   *engine.Mind
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server over an assembled mind.
// The mind is injected to allow sharing with other surfaces (e.g., MCP).
func NewServer(config Config, mind *engine.Mind, logger *zap.Logger) (*Server, error) {
	if mind == nil {
		return nil, errors.New("mind is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		mind:   mind,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/turn", s.handleTurn)
	app.Post("/v1/idle", s.handleIdle)
	app.Post("/v1/dream", s.handleDream)
	app.Get("/v1/state", s.handleState)
	app.Get("/v1/memories", s.handleMemories)
	app.Get("/v1/recall", s.handleRecall)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
