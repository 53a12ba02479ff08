package engine

import (
	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/game"
)

// Searcher performs the minimax search for one root position. The root
// side is the evaluated color; minAfter handles its moves (the opponent
// answers by minimizing) and maxAfter the opponent's moves.
type Searcher struct {
	policy Policy
	color  board.Color
	nodes  uint64
}

// NewSearcher creates a searcher evaluating moves for color.
func NewSearcher(policy Policy, color board.Color) *Searcher {
	return &Searcher{policy: policy, color: color}
}

// Nodes returns the number of moves played so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// EvaluateMove evaluates a root move of g with a full window, so that the
// results of sibling root moves can be ranked against each other.
func (s *Searcher) EvaluateMove(g *game.Game, m board.Move) Evaluation {
	return s.minAfter(g, m, 0, lowest)
}

// terminal maps a stop reason of Play onto an evaluation. A move that
// leaves the own king attackable means its mover was already mated one
// half-step earlier.
func (s *Searcher) terminal(g *game.Game, reason board.StopReason, halfStep int) Evaluation {
	if reason == board.KingInCheckAfterMove {
		st := g.State()
		if g.Turn() == s.color {
			return LoseIn(halfStep-1, materialBalance(&st, s.color))
		}
		return WinIn(halfStep - 1)
	}
	draw, _ := drawReasonOf(reason)
	return Drawn(draw)
}

// leaf evaluates a position where the search stops.
func (s *Searcher) leaf(next *game.Game, halfStep int) Evaluation {
	if next.InCheck() && next.IsCheckmate() {
		return s.mated(next, halfStep)
	}
	st := next.State()
	return Numeric(StaticEval(&st, s.color))
}

// mated scores the checkmate of the side to move in next, delivered by
// the move at halfStep.
func (s *Searcher) mated(next *game.Game, halfStep int) Evaluation {
	if next.Turn() == s.color {
		st := next.State()
		return LoseIn(halfStep, materialBalance(&st, s.color))
	}
	return WinIn(halfStep)
}

// noReplies scores a position whose side to move has no move at all, not
// even one that would leave its king attacked.
func (s *Searcher) noReplies(next *game.Game, halfStep int) Evaluation {
	if next.InCheck() {
		return s.mated(next, halfStep)
	}
	return Drawn(Stalemate)
}

// minAfter plays the evaluated color's move m at halfStep and returns the
// lowest evaluation among the opponent's answers. It returns early once
// the result cannot exceed bound, the best alternative of the caller.
func (s *Searcher) minAfter(g *game.Game, m board.Move, halfStep int, bound Evaluation) Evaluation {
	s.nodes++
	next, reason := g.Play(m)
	if reason != board.Ongoing {
		return s.terminal(g, reason, halfStep)
	}
	if s.policy.shouldStop(halfStep, g, next) {
		return s.leaf(next, halfStep)
	}

	replies := next.ReachableMoves()
	if replies.Len() == 0 {
		return s.noReplies(next, halfStep)
	}
	result := highest
	stopped := scrambled(replies, func(reply board.Move) bool {
		e := s.maxAfter(next, reply, halfStep+1, result)
		if Compare(e, result) < 0 {
			result = e
		}
		return Compare(result, bound) <= 0
	})
	if stopped {
		return result
	}

	// Every answer loses on the spot, yet the opponent is not in check.
	if result.isWinIn(halfStep) && !next.InCheck() {
		return Drawn(Stalemate)
	}
	return result
}

// maxAfter plays the opponent's move m at halfStep and returns the highest
// evaluation among the evaluated color's answers, returning early once it
// reaches bound.
func (s *Searcher) maxAfter(g *game.Game, m board.Move, halfStep int, bound Evaluation) Evaluation {
	s.nodes++
	next, reason := g.Play(m)
	if reason != board.Ongoing {
		return s.terminal(g, reason, halfStep)
	}
	if s.policy.shouldStop(halfStep, g, next) {
		return s.leaf(next, halfStep)
	}

	replies := next.ReachableMoves()
	if replies.Len() == 0 {
		return s.noReplies(next, halfStep)
	}
	result := lowest
	stopped := scrambled(replies, func(reply board.Move) bool {
		e := s.minAfter(next, reply, halfStep+1, result)
		if Compare(e, result) > 0 {
			result = e
		}
		return Compare(result, bound) >= 0
	})
	if stopped {
		return result
	}

	if result.isLoseIn(halfStep) && !next.InCheck() {
		return Drawn(Stalemate)
	}
	return result
}

// scrambleStrides are primes used to walk a move list in a fixed
// non-sequential order.
var scrambleStrides = [...]int{7, 11, 13, 17, 19}

// scrambled calls visit for every move of ml in a deterministic shuffled
// order without touching the shared list. It stops and returns true as
// soon as visit does.
func scrambled(ml *board.MoveList, visit func(board.Move) bool) bool {
	n := ml.Len()
	stride := 1
	for _, p := range scrambleStrides {
		if n%p != 0 {
			stride = p
			break
		}
	}
	idx := n / 2
	for i := 0; i < n; i++ {
		if visit(ml.Get(idx)) {
			return true
		}
		idx = (idx + stride) % n
	}
	return false
}
