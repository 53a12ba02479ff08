package game

import (
	"github.com/simon-void/voidchess-engine/internal/board"
)

// fiftyMoveEntries is the history length per color after which the game
// is drawn by the fifty-move rule.
const fiftyMoveEntries = 50

// BoardStates keeps one fingerprint history per color that produced the
// position, so a position only repeats on the same side's turn. The lists
// are append-only and shared between games: Record never writes into a
// slice another game can see.
type BoardStates struct {
	byMover [2][]board.Fingerprint
}

// Record adds the position fp that mover just produced and reports a draw
// by repetition or by the fifty-move rule. An irreversible move (pawn move
// or capture) starts both histories afresh.
func (bs BoardStates) Record(fp board.Fingerprint, mover board.Color, irreversible bool) (BoardStates, board.StopReason) {
	if irreversible {
		bs.byMover[mover] = []board.Fingerprint{fp}
		bs.byMover[mover.Other()] = nil
		return bs, board.Ongoing
	}

	list := bs.byMover[mover]
	list = append(list[:len(list):len(list)], fp)
	bs.byMover[mover] = list

	seen := 0
	for _, old := range list {
		if old == fp {
			seen++
		}
	}
	if seen >= 3 {
		return bs, board.ThreeTimesRepetition
	}
	if len(bs.byMover[board.White]) >= fiftyMoveEntries && len(bs.byMover[board.Black]) >= fiftyMoveEntries {
		return bs, board.NoChangeIn50Moves
	}
	return bs, board.Ongoing
}

// Len returns the history length recorded for positions produced by mover.
func (bs BoardStates) Len(mover board.Color) int {
	return len(bs.byMover[mover])
}
