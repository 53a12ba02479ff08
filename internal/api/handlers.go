package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/game"
	"github.com/simon-void/voidchess-engine/internal/render"
)

var errGameOver = errors.New("game is over")

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req configRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := s.engine.Evaluate(c.UserContext(), req.Config)
	if err != nil {
		return err
	}
	return c.JSON(newEvaluateResponse(res))
}

func (s *Server) evaluateMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	eval, err := s.engine.EvaluateMove(c.UserContext(), req.Config, req.Move)
	if err != nil {
		return err
	}
	return c.JSON(evaluateMoveResponse{Move: req.Move, Evaluation: eval})
}

func (s *Server) allowedMoves(c *fiber.Ctx) error {
	var req configRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	moves, err := s.engine.AllowedMoves(req.Config)
	if err != nil {
		return err
	}
	return c.JSON(allowedMovesResponse{Moves: moves})
}

func (s *Server) play(c *fiber.Ctx) error {
	var req moveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := s.engine.Play(req.Config, req.Move)
	if err != nil {
		return err
	}
	return c.JSON(newPlayResponse(res))
}

// diagram renders ?config=...&size=...&flip=true as PNG.
func (s *Server) diagram(c *fiber.Ctx) error {
	g, err := game.ParseConfig(c.Query("config"))
	if err != nil {
		return err
	}
	return s.sendDiagram(c, g)
}

func (s *Server) sendDiagram(c *fiber.Ctx, g *game.Game) error {
	opts := s.render
	opts.SquareSize = c.QueryInt("size", opts.SquareSize)
	opts.Flip = c.QueryBool("flip", false)
	opts.LastMove = g.LastMove()

	st := g.State()
	var buf bytes.Buffer
	if err := render.PNG(&buf, &st, opts); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

func (s *Server) createGame(c *fiber.Ctx) error {
	var req configRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if _, err := game.ParseConfig(req.Config); err != nil {
		return err
	}
	sess, err := s.sessions.Create(game.NormalizeConfig(req.Config))
	if err != nil {
		return err
	}
	state, err := s.state(sess)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (s *Server) listGames(c *fiber.Ctx) error {
	ids, err := s.sessions.List()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"games": ids})
}

func (s *Server) getGame(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("gameId"))
	if err != nil {
		return err
	}
	state, err := s.state(sess)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

func (s *Server) deleteGame(c *fiber.Ctx) error {
	if err := s.sessions.Delete(c.Params("gameId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) playGameMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	state, err := s.playSessionMove(c.Params("gameId"), req.Move)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// playAIMove lets the engine choose and play the next move of a session.
func (s *Server) playAIMove(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("gameId"))
	if err != nil {
		return err
	}
	if sess.reason != board.Ongoing {
		return errGameOver
	}
	res, err := s.engine.Evaluate(c.UserContext(), sess.config)
	if err != nil {
		return err
	}
	if res.Ended {
		return fmt.Errorf("%w: %s", errGameOver, res.Status)
	}
	state, err := s.applyMove(sess, res.Move.String())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"evaluation": newEvaluateResponse(res), "game": state})
}

func (s *Server) gameDiagram(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("gameId"))
	if err != nil {
		return err
	}
	g, err := game.ParseConfig(sess.config)
	if err != nil {
		return err
	}
	return s.sendDiagram(c, g)
}

func (s *Server) playSessionMove(id, move string) (gameState, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return gameState{}, err
	}
	return s.applyMove(sess, move)
}

// applyMove plays move in a session. A move that draws the game leaves the
// config as it was and is recorded as the session's stop reason.
func (s *Server) applyMove(sess session, move string) (gameState, error) {
	if sess.reason != board.Ongoing {
		return gameState{}, errGameOver
	}
	res, err := s.engine.Play(sess.config, move)
	if err != nil {
		return gameState{}, err
	}
	next, err := s.sessions.Update(sess, res.Config, res.Reason)
	if err != nil {
		return gameState{}, err
	}
	state, err := s.state(next)
	if err != nil {
		return gameState{}, err
	}
	if res.Reason != board.Ongoing {
		state.FEN = res.FEN
	}
	return state, nil
}

// state builds the view of a session.
func (s *Server) state(sess session) (gameState, error) {
	g, err := game.ParseConfig(sess.config)
	if err != nil {
		return gameState{}, err
	}
	moves, err := s.engine.AllowedMoves(sess.config)
	if err != nil {
		return gameState{}, err
	}
	if sess.reason != board.Ongoing {
		moves = []board.Move{}
	}
	san := g.MovesSAN()
	if san == nil {
		san = []string{}
	}
	return gameState{
		ID:           sess.id,
		Config:       sess.config,
		FEN:          g.FEN(),
		Moves:        san,
		Status:       g.Status(),
		Reason:       sess.reason,
		AllowedMoves: moves,
	}, nil
}
