// Package engine implements the chess AI: a minimax search with alpha-beta
// pruning over game.Game values, a material and mobility heuristic, and the
// randomized choice among near-equal moves.
package engine

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// Evaluation constants, in pawns.
const (
	PawnValue   = 1.0
	KnightValue = 3.0
	BishopValue = 3.0
	RookValue   = 5.0
	QueenValue  = 9.0
	KingValue   = 0.0
)

// Piece values indexed by board.PieceType.
var pieceValues = [7]float64{0, PawnValue, RookValue, KnightValue, BishopValue, QueenValue, KingValue}

const (
	pawnAdvanceBonus   = 0.1   // per row beyond the start row
	pawnProtectedBonus = 0.15  // defended by an own pawn from behind
	mobilityWeight     = 0.015 // per pseudo-legal move more than the opponent
)

// StaticEval scores s from color's point of view without searching:
// material with pawn structure plus a small mobility term. The score for
// black is the negation of the score for white.
func StaticEval(s *board.State, color board.Color) float64 {
	b := s.Board()
	score := material(&b) + mobilityWeight*float64(s.CountPseudoLegalMoves(board.White)-s.CountPseudoLegalMoves(board.Black))
	if color == board.Black {
		score = -score
	}

	if board.DebugValidation {
		m := s.Mirror()
		if mirrored := StaticEval(&m, color.Other()); math.Abs(mirrored-score) > 1e-9 {
			log.Error().
				Str("fen", s.FEN()).
				Float64("score", score).
				Float64("mirrored", mirrored).
				Msg("static evaluation is not color symmetric")
		}
	}
	return score
}

// materialBalance is the material-only score from color's point of view.
func materialBalance(s *board.State, color board.Color) float64 {
	b := s.Board()
	score := material(&b)
	if color == board.Black {
		return -score
	}
	return score
}

// material sums figure values, white positive.
func material(b *board.Board) float64 {
	var score float64
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		f := b.At(sq)
		if f == board.NoFigure {
			continue
		}
		v := pieceValues[f.Type()]
		if f.Type() == board.Pawn {
			v = pawnValue(b, sq, f.Color())
		}
		if f.Color() == board.White {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// pawnValue grows with the rows a pawn has advanced and when an own pawn
// covers it diagonally from behind.
func pawnValue(b *board.Board, sq board.Square, c board.Color) float64 {
	advanced := sq.Row() - 1
	back := -1
	if c == board.Black {
		advanced = 6 - sq.Row()
		back = 1
	}
	v := PawnValue + pawnAdvanceBonus*float64(advanced)

	own := board.NewFigure(board.Pawn, c)
	for _, dc := range [2]int{-1, 1} {
		if behind, ok := sq.Offset(dc, back); ok && b.At(behind) == own {
			v += pawnProtectedBonus
			break
		}
	}
	return v
}
