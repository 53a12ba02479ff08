package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/engine"
)

// handleConnection serves one websocket of a game session. Clients send
// "evaluate", "move" or "aiMove" messages; evaluations are streamed move
// by move before the result.
func (s *Server) handleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	log := s.logger.With().Str("game", gameID).Logger()

	sess, err := s.sessions.Get(gameID)
	if err != nil {
		s.sendError(c, err)
		c.Close()
		return
	}
	if state, err := s.state(sess); err == nil {
		s.send(c, MessageTypeGameState, state)
	}
	log.Debug().Msg("websocket connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("websocket closed")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(c, fmt.Errorf("parse message: %w", err))
			continue
		}
		if err := s.handleMessage(ctx, c, gameID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message failed")
			s.sendError(c, err)
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, c *websocket.Conn, gameID string, msg Message) error {
	switch msg.Type {
	case MessageTypeEvaluate:
		sess, err := s.sessions.Get(gameID)
		if err != nil {
			return err
		}
		res, err := s.streamEvaluation(ctx, c, sess.config)
		if err != nil {
			return err
		}
		s.send(c, MessageTypeResult, newEvaluateResponse(res))
		return nil

	case MessageTypeMove:
		var req struct {
			Move string `json:"move"`
		}
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("parse move: %w", err)
		}
		state, err := s.playSessionMove(gameID, req.Move)
		if err != nil {
			return err
		}
		s.send(c, MessageTypeGameState, state)
		return nil

	case MessageTypeAIMove:
		sess, err := s.sessions.Get(gameID)
		if err != nil {
			return err
		}
		if sess.reason != board.Ongoing {
			return errGameOver
		}
		res, err := s.streamEvaluation(ctx, c, sess.config)
		if err != nil {
			return err
		}
		s.send(c, MessageTypeResult, newEvaluateResponse(res))
		if res.Ended {
			return nil
		}
		state, err := s.applyMove(sess, res.Move.String())
		if err != nil {
			return err
		}
		s.send(c, MessageTypeGameState, state)
		return nil
	}
	return fmt.Errorf("unknown message type: %s", msg.Type)
}

func (s *Server) streamEvaluation(ctx context.Context, c *websocket.Conn, config string) (engine.Result, error) {
	return s.engine.EvaluateStream(ctx, config, func(info engine.MoveInfo) {
		s.send(c, MessageTypeMoveEvaluated, moveEvaluated{
			Move:       info.Move,
			Evaluation: info.Evaluation,
			Nodes:      info.Nodes,
			TimeMs:     info.Time.Milliseconds(),
			Index:      info.Index,
			Total:      info.Total,
		})
	})
}

func (s *Server) send(c *websocket.Conn, t MessageType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(t)).Msg("marshal websocket payload")
		return
	}
	if err := c.WriteJSON(Message{Type: t, Payload: data}); err != nil {
		s.logger.Debug().Err(err).Str("type", string(t)).Msg("websocket write failed")
	}
}

func (s *Server) sendError(c *websocket.Conn, err error) {
	_, body := errorStatus(err)
	s.send(c, MessageTypeError, body)
}
