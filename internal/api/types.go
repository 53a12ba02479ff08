package api

import (
	"encoding/json"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/game"
)

type configRequest struct {
	Config string `json:"config"`
}

type moveRequest struct {
	Config string `json:"config"`
	Move   string `json:"move"`
}

type evaluateResponse struct {
	Ended      bool               `json:"ended"`
	Status     game.Status        `json:"status"`
	Move       *board.Move        `json:"move,omitempty"`
	Evaluation *engine.Evaluation `json:"evaluation,omitempty"`
	Ranked     []engine.Ranked    `json:"ranked,omitempty"`
	Nodes      uint64             `json:"nodes"`
	Cached     bool               `json:"cached"`
}

func newEvaluateResponse(res engine.Result) evaluateResponse {
	out := evaluateResponse{
		Ended:  res.Ended,
		Status: res.Status,
		Ranked: res.Ranked,
		Nodes:  res.Nodes,
		Cached: res.Cached,
	}
	if !res.Ended {
		out.Move = &res.Move
		out.Evaluation = &res.Evaluation
	}
	return out
}

type evaluateMoveResponse struct {
	Move       string            `json:"move"`
	Evaluation engine.Evaluation `json:"evaluation"`
}

type allowedMovesResponse struct {
	Moves []board.Move `json:"moves"`
}

type playResponse struct {
	Config string           `json:"config"`
	FEN    string           `json:"fen"`
	Status game.Status      `json:"status"`
	Reason board.StopReason `json:"reason"`
}

func newPlayResponse(res engine.PlayResult) playResponse {
	return playResponse{Config: res.Config, FEN: res.FEN, Status: res.Status, Reason: res.Reason}
}

// gameState is the view of a session.
type gameState struct {
	ID           string           `json:"id"`
	Config       string           `json:"config"`
	FEN          string           `json:"fen"`
	Moves        []string         `json:"moves"`
	Status       game.Status      `json:"status"`
	Reason       board.StopReason `json:"reason"`
	AllowedMoves []board.Move     `json:"allowedMoves"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// MessageType tells websocket messages apart.
type MessageType string

const (
	MessageTypeEvaluate      MessageType = "evaluate"
	MessageTypeMove          MessageType = "move"
	MessageTypeAIMove        MessageType = "aiMove"
	MessageTypeMoveEvaluated MessageType = "moveEvaluated"
	MessageTypeResult        MessageType = "result"
	MessageTypeGameState     MessageType = "gameState"
	MessageTypeError         MessageType = "error"
)

// Message is a websocket message in either direction.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type moveEvaluated struct {
	Move       board.Move        `json:"move"`
	Evaluation engine.Evaluation `json:"evaluation"`
	Nodes      uint64            `json:"nodes"`
	TimeMs     int64             `json:"timeMs"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
}
