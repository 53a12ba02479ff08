// Package game composes the immutable board state with the bookkeeping a
// running game needs: the reachable move cache, the repetition history and
// the played moves. Play is the single transition entry point.
package game

import (
	"github.com/simon-void/voidchess-engine/internal/board"
)

// Status is the outcome of the position for the side to move.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "ongoing"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for c := Ongoing; c <= Stalemate; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return board.FormatError("unknown status %q", text)
}

// Game is one node of a game tree. Games are never modified after Play
// returned them, so siblings in a search share their parent safely.
type Game struct {
	origin     board.State
	state      board.State
	reachable  *board.MoveList
	history    BoardStates
	halfMoves  int
	checkers   board.Checkers
	last       board.Transition
	lastMove   board.Move
	moves      []board.Move
	promotions []board.PieceType
}

// Option configures a new Game.
type Option func(*Game)

// WithPromotions sets the promotion pieces offered in the reachable moves.
// The default is board.SearchPromotions.
func WithPromotions(promotions []board.PieceType) Option {
	return func(g *Game) {
		g.promotions = promotions
	}
}

// New starts a game from s. The checkers of the side to move come from a
// full scan.
func New(s board.State, opts ...Option) *Game {
	g := &Game{
		origin:     s,
		state:      s,
		promotions: board.SearchPromotions,
		lastMove:   board.NoMove,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reachable = board.NewMoveList()
	g.state.PseudoLegalMoves(g.reachable, g.promotions)
	g.checkers = g.state.Checkers()
	return g
}

// NewClassic starts a game from the classical starting position.
func NewClassic(opts ...Option) *Game {
	return New(board.NewClassicState(), opts...)
}

// Play applies a reachable move. It returns nil and KingInCheckAfterMove
// when the move leaves the mover's king attackable. Draws return the final
// game together with their reason.
func (g *Game) Play(m board.Move) (*Game, board.StopReason) {
	mover := g.state.Turn()
	next, t := g.state.Apply(m)

	reachable := board.NewMoveList()
	next.PseudoLegalMoves(reachable, g.promotions)
	king := next.KingSquare(mover)
	for i := 0; i < reachable.Len(); i++ {
		if reachable.Get(i).To() == king {
			return nil, board.KingInCheckAfterMove
		}
	}

	child := &Game{
		origin:     g.origin,
		state:      next,
		reachable:  reachable,
		halfMoves:  g.halfMoves + 1,
		checkers:   next.CheckersAfter(m),
		last:       t,
		lastMove:   m,
		moves:      append(g.moves[:len(g.moves):len(g.moves)], m),
		promotions: g.promotions,
	}

	if t.IsCapture() {
		b := next.Board()
		if !b.HasSufficientMaterial() {
			child.history = g.history
			return child, board.InsufficientMaterial
		}
	}
	var reason board.StopReason
	child.history, reason = g.history.Record(next.Fingerprint(), mover, t.Irreversible())
	return child, reason
}

// Resolve maps a parsed move onto the reachable move it denotes. Any
// promotion piece is accepted, and a plain move text may name a castling
// or en passant move by its squares.
func (g *Game) Resolve(m board.Move) (board.Move, bool) {
	if m.IsPromotion() {
		if g.reachable.Contains(board.NewPromotion(m.From(), m.To(), board.Queen)) {
			return m, true
		}
		return board.NoMove, false
	}
	if g.reachable.Contains(m) {
		return m, true
	}
	if m.Kind() != board.Normal {
		return board.NoMove, false
	}
	for i := 0; i < g.reachable.Len(); i++ {
		r := g.reachable.Get(i)
		if r.From() == m.From() && r.To() == m.To() && (r.IsCastling() || r.IsEnPassant()) {
			return r, true
		}
	}
	return board.NoMove, false
}

// PlayChecked plays a move supplied from outside the engine. Moves that
// are not reachable or leave the own king in check are rejected with an
// IllegalMove error.
func (g *Game) PlayChecked(m board.Move) (*Game, board.StopReason, error) {
	resolved, ok := g.Resolve(m)
	if !ok {
		return nil, board.Ongoing, board.MoveError("%s is not a possible move in %s", m, g.state.FEN())
	}
	next, reason := g.Play(resolved)
	if reason == board.KingInCheckAfterMove {
		return nil, reason, board.MoveError("%s leaves the %s king in check", m, g.state.Turn())
	}
	return next, reason, nil
}

// LegalMoves returns the moves of the side to move that do not leave its
// king in check, with every promotion piece.
func (g *Game) LegalMoves() *board.MoveList {
	return g.state.LegalMoves(board.AllPromotions)
}

// ReachableMoves returns the cached pseudo-legal moves of the side to
// move. The list is shared and must not be modified.
func (g *Game) ReachableMoves() *board.MoveList {
	return g.reachable
}

// IsCheckmate reports whether the side to move is mated, using the checkers
// found when the last move was played.
func (g *Game) IsCheckmate() bool {
	return g.state.IsCheckmate(g.checkers)
}

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool {
	return g.checkers.Len() > 0
}

// Status classifies the position for the side to move.
func (g *Game) Status() Status {
	if g.InCheck() {
		if g.IsCheckmate() {
			return Checkmate
		}
		return Ongoing
	}
	if g.state.IsStalemate() {
		return Stalemate
	}
	return Ongoing
}

// State returns the current state.
func (g *Game) State() board.State {
	return g.state
}

// Turn returns the side to move.
func (g *Game) Turn() board.Color {
	return g.state.Turn()
}

// HalfMoves returns the number of moves played in this game.
func (g *Game) HalfMoves() int {
	return g.halfMoves
}

// Checkers returns the figures checking the side to move.
func (g *Game) Checkers() board.Checkers {
	return g.checkers
}

// LastTransition describes the last move played.
func (g *Game) LastTransition() board.Transition {
	return g.last
}

// LastMove returns the last move played, NoMove at the start.
func (g *Game) LastMove() board.Move {
	return g.lastMove
}

// Moves returns a copy of the moves played since the game was created.
func (g *Game) Moves() []board.Move {
	out := make([]board.Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// Origin returns the state the game was created from.
func (g *Game) Origin() board.State {
	return g.origin
}

// MovesSAN returns the played moves in Standard Algebraic Notation.
func (g *Game) MovesSAN() []string {
	return board.MovesToSAN(g.origin, g.moves)
}

// Promotions returns the promotion pieces offered in the reachable moves.
func (g *Game) Promotions() []board.PieceType {
	return g.promotions
}

// FEN returns the FEN of the current position.
func (g *Game) FEN() string {
	return g.state.FEN()
}
