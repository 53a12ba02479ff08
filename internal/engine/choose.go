package engine

import (
	"math/rand/v2"
	"sort"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// Ranked pairs a root move with its evaluation.
type Ranked struct {
	Move       board.Move `json:"move"`
	Evaluation Evaluation `json:"evaluation"`
}

// SortRanked orders moves best first. Equal evaluations keep their
// generation order.
func SortRanked(ranked []Ranked) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return Compare(ranked[i].Evaluation, ranked[j].Evaluation) > 0
	})
}

// Chooser picks the move to play from a ranked list, preferring the best
// move but sometimes settling for a slightly weaker one.
type Chooser struct {
	stop   float64 // probability to settle at each step
	maxGap float64 // largest numeric distance from the best move
	rng    *rand.Rand
}

// NewChooser creates a chooser with a deterministic random source.
func NewChooser(stopProbability, maxGap float64, seed uint64) *Chooser {
	return &Chooser{
		stop:   stopProbability,
		maxGap: maxGap,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Choose returns the index of the chosen entry of ranked, which must be
// sorted best first and not be empty. Forced mates either way are never
// traded for anything else.
func (c *Chooser) Choose(ranked []Ranked) int {
	top := ranked[0].Evaluation
	if top.IsTerminal() {
		return 0
	}
	chosen := 0
	for chosen+1 < len(ranked) {
		if c.rng.Float64() < c.stop {
			break
		}
		next := ranked[chosen+1].Evaluation
		if next.IsTerminal() || top.NumericValue()-next.NumericValue() > c.maxGap {
			break
		}
		chosen++
	}
	return chosen
}
