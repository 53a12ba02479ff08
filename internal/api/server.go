// Package api exposes the engine over HTTP: stateless JSON endpoints on
// game config texts, game sessions, PNG diagrams and a websocket that
// streams evaluations while the engine searches.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/render"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins string
	MaxGames       int
	Render         render.Options
	Store          SessionStore // nil keeps sessions in memory only
}

// Server wires the engine into a fiber app.
type Server struct {
	app      *fiber.App
	engine   *engine.Engine
	sessions *Sessions
	render   render.Options
	logger   zerolog.Logger
}

func New(eng *engine.Engine, opts Options, logger zerolog.Logger) *Server {
	s := &Server{
		engine:   eng,
		sessions: NewSessions(opts.Store, opts.MaxGames),
		render:   opts.Render,
		logger:   logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "voidchess",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	s.app.Use(s.logRequests)

	api := s.app.Group("/api")
	api.Post("/evaluate", s.evaluate)
	api.Post("/evaluate-move", s.evaluateMove)
	api.Post("/allowed-moves", s.allowedMoves)
	api.Post("/play", s.play)
	api.Get("/diagram", s.diagram)

	games := api.Group("/games")
	games.Post("/", s.createGame)
	games.Get("/", s.listGames)
	games.Get("/:gameId", s.getGame)
	games.Delete("/:gameId", s.deleteGame)
	games.Post("/:gameId/moves", s.playGameMove)
	games.Post("/:gameId/ai", s.playAIMove)
	games.Get("/:gameId/diagram", s.gameDiagram)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	s.app.Get("/ws/games/:gameId", websocket.New(s.handleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	return s
}

// App returns the fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for running requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}

// handleError answers every failed request with a JSON error body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, body := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(body)
}

// errorStatus maps rule errors onto client errors.
func errorStatus(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var be *board.Error
	if errors.As(err, &be) {
		body.Kind = be.Kind.String()
		if be.Kind == board.HighLevel {
			body.Reason = be.Reason.String()
		}
		switch be.Kind {
		case board.IllegalFormat, board.IllegalConfig:
			return fiber.StatusBadRequest, body
		default:
			return fiber.StatusUnprocessableEntity, body
		}
	}

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, body
	case errors.Is(err, errBadGameID):
		return fiber.StatusBadRequest, body
	case errors.Is(err, errGameNotFound):
		return fiber.StatusNotFound, body
	case errors.Is(err, errConflict), errors.Is(err, errGameOver):
		return fiber.StatusConflict, body
	case errors.Is(err, errTooManyGames):
		return fiber.StatusServiceUnavailable, body
	}
	return fiber.StatusInternalServerError, body
}
