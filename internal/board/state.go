package board

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// DebugValidation enables internal consistency assertions (king cache vs
// board contents). They only log and never change behavior.
const DebugValidation = false

// State is an immutable snapshot of a game: the board, the side to move,
// cached king squares, the en-passant target, the castling latches and the
// FEN counters. Transitions return a new State; a State is never modified
// after it has been built.
type State struct {
	board          Board
	turn           Color
	kings          [2]Square
	enPassant      Square // NoSquare unless the last ply was a double step
	castling       CastlingRights
	halfMoveClock  int // plies since the last pawn move or capture
	fullMoveNumber int
}

// Transition describes what a move did, as far as the draw rules and the
// search's pruning care.
type Transition struct {
	Moved    PieceType
	Captured Figure
}

// IsCapture reports whether a figure was taken.
func (t Transition) IsCapture() bool {
	return t.Captured != NoFigure
}

// IsPawnMove reports whether a pawn moved.
func (t Transition) IsPawnMove() bool {
	return t.Moved == Pawn
}

// Irreversible reports whether the position can never occur again.
func (t Transition) Irreversible() bool {
	return t.IsPawnMove() || t.IsCapture()
}

var classicBackRow = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewClassicState creates the starting position.
func NewClassicState() State {
	s := State{
		turn:           White,
		enPassant:      NoSquare,
		castling:       AllCastling,
		fullMoveNumber: 1,
	}
	for column := 0; column < 8; column++ {
		s.board.Put(NewSquare(column, 0), NewFigure(classicBackRow[column], White))
		s.board.Put(NewSquare(column, 1), NewFigure(Pawn, White))
		s.board.Put(NewSquare(column, 6), NewFigure(Pawn, Black))
		s.board.Put(NewSquare(column, 7), NewFigure(classicBackRow[column], Black))
	}
	s.kings = [2]Square{E1, E8}
	return s
}

// NewManualState builds a state from an arbitrary placement after checking
// it: exactly one king per side, no pawns on the first or last row, and an
// en-passant target backed by a pawn that really just made a double step.
// Castling latches are set for every king/rook pair on its start squares.
func NewManualState(b Board, turn Color, enPassant Square) (State, error) {
	s := State{
		board:          b,
		turn:           turn,
		enPassant:      NoSquare,
		fullMoveNumber: 1,
	}

	kingCount := [2]int{}
	for sq := Square(0); sq < NoSquare; sq++ {
		f := b.At(sq)
		switch f.Type() {
		case King:
			kingCount[f.Color()]++
			s.kings[f.Color()] = sq
		case Pawn:
			if sq.Row() == 0 || sq.Row() == 7 {
				return State{}, ConfigError("pawn on %s: pawns cannot stand on the first or last row", sq)
			}
		}
	}
	for _, c := range [2]Color{White, Black} {
		if kingCount[c] != 1 {
			return State{}, ConfigError("%s must have exactly one king, found %d", c, kingCount[c])
		}
	}

	if enPassant != NoSquare {
		if err := validateEnPassant(&b, turn, enPassant); err != nil {
			return State{}, err
		}
		s.enPassant = enPassant
	}
	s.castling = rightsFromPlacement(&b)
	return s, nil
}

// validateEnPassant checks that the opponent's pawn stands just past the
// target and that both the target and the pawn's origin square are empty.
func validateEnPassant(b *Board, turn Color, target Square) error {
	mover := turn.Other()
	wantRow := 5
	if turn == Black {
		wantRow = 2
	}
	if target.Row() != wantRow {
		return ConfigError("en-passant target %s is not on row %d", target, wantRow+1)
	}
	pawnSq, _ := target.Offset(0, mover.forward())
	originSq, _ := target.Offset(0, -mover.forward())
	if b.At(pawnSq) != NewFigure(Pawn, mover) {
		return ConfigError("en-passant target %s is not backed by a %s pawn on %s", target, mover, pawnSq)
	}
	if !b.IsEmpty(target) || !b.IsEmpty(originSq) {
		return ConfigError("en-passant target %s needs %s and %s to be empty", target, target, originSq)
	}
	return nil
}

// Board returns a copy of the board.
func (s State) Board() Board {
	return s.board
}

// At returns the figure on the square.
func (s State) At(sq Square) Figure {
	return s.board.At(sq)
}

// Turn returns the side to move.
func (s State) Turn() Color {
	return s.turn
}

// KingSquare returns the king square of the given color.
func (s State) KingSquare(c Color) Square {
	return s.kings[c]
}

// EnPassant returns the en-passant target or NoSquare.
func (s State) EnPassant() Square {
	return s.enPassant
}

// CastlingRights returns the castling latches.
func (s State) CastlingRights() CastlingRights {
	return s.castling
}

// HalfMoveClock returns the plies since the last pawn move or capture.
func (s State) HalfMoveClock() int {
	return s.halfMoveClock
}

// FullMoveNumber returns the FEN full-move number.
func (s State) FullMoveNumber() int {
	return s.fullMoveNumber
}

// Fingerprint returns the packed board.
func (s State) Fingerprint() Fingerprint {
	return s.board.Fingerprint()
}

// Apply plays a pseudo-legal move and returns the resulting state. The
// receiver is left untouched.
func (s *State) Apply(m Move) (State, Transition) {
	next := *s
	us := s.turn
	from, to := m.From(), m.To()
	b := &next.board

	mover := b.Remove(from)
	t := Transition{Moved: mover.Type()}
	next.enPassant = NoSquare

	switch m.Kind() {
	case Normal:
		t.Captured = b.At(to)
		b.Put(to, mover)
		if mover.Type() == Pawn && abs(to.Row()-from.Row()) == 2 {
			next.enPassant = NewSquare(from.Column(), (from.Row()+to.Row())/2)
		}
	case Promotion:
		t.Captured = b.At(to)
		b.Put(to, NewFigure(m.Promotion(), us))
	case EnPassant:
		t.Captured = b.Remove(NewSquare(to.Column(), from.Row()))
		b.Put(to, mover)
	case Castling:
		rookFrom, rookTo := castlingRookSquares(us, m.CastlingSide())
		rook := b.Remove(rookFrom)
		b.Put(to, mover)
		b.Put(rookTo, rook)
	}

	if mover.Type() == King {
		next.kings[us] = to
	}
	next.castling = next.castling.afterMove(from, to)

	if t.Irreversible() {
		next.halfMoveClock = 0
	} else {
		next.halfMoveClock++
	}
	if us == Black {
		next.fullMoveNumber++
	}
	next.turn = us.Other()

	if DebugValidation {
		next.assertConsistent(m)
	}
	return next, t
}

// assertConsistent logs when the cached king squares disagree with the board.
func (s *State) assertConsistent(m Move) {
	for _, c := range [2]Color{White, Black} {
		if s.board.At(s.kings[c]) != NewFigure(King, c) {
			log.Error().
				Stringer("color", c).
				Stringer("king", s.kings[c]).
				Stringer("move", m).
				Str("placement", s.board.Placement()).
				Msg("king cache out of sync with board")
		}
	}
}

// Mirror returns the color-swapped, vertically flipped state.
func (s *State) Mirror() State {
	m := State{
		board:          s.board.Mirror(),
		turn:           s.turn.Other(),
		kings:          [2]Square{s.kings[Black].Mirror(), s.kings[White].Mirror()},
		enPassant:      s.enPassant.Mirror(),
		castling:       s.castling.Mirror(),
		halfMoveClock:  s.halfMoveClock,
		fullMoveNumber: s.fullMoveNumber,
	}
	return m
}

// String returns a visual representation of the state.
func (s *State) String() string {
	return fmt.Sprintf("%s\nSide to move: %s\nCastling: %s\nEn passant: %s\n",
		s.board.String(), s.turn, s.castling, s.enPassant)
}
