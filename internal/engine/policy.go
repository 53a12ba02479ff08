package engine

import (
	"fmt"

	"github.com/simon-void/voidchess-engine/internal/game"
)

// Policy decides how deep the search looks. Depths are half-step indices:
// the evaluated move itself is half-step 0.
type Policy struct {
	Base      int `json:"base"`       // stop from here on in quiet positions
	PawnMoved int `json:"pawn_moved"` // after a pawn move on this or the prior ply
	Capture   int `json:"capture"`    // right after a capture
	Limit     int `json:"limit"`      // hard ceiling, even while in check
}

// Preset policies.
var (
	QuickPolicy    = Policy{Base: 1, PawnMoved: 1, Capture: 2, Limit: 6}
	DefaultPolicy  = Policy{Base: 2, PawnMoved: 3, Capture: 4, Limit: 10}
	ThoroughPolicy = Policy{Base: 3, PawnMoved: 4, Capture: 5, Limit: 12}
)

// PolicyByName returns a preset policy.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "quick":
		return QuickPolicy, true
	case "default", "":
		return DefaultPolicy, true
	case "thorough":
		return ThoroughPolicy, true
	}
	return Policy{}, false
}

// Validate checks that the thresholds grow from Base to Limit.
func (p Policy) Validate() error {
	if p.Base < 0 {
		return fmt.Errorf("policy base %d must not be negative", p.Base)
	}
	if p.PawnMoved < p.Base || p.Capture < p.PawnMoved || p.Limit < p.Capture {
		return fmt.Errorf("policy thresholds must not decrease: base %d, pawn moved %d, capture %d, limit %d",
			p.Base, p.PawnMoved, p.Capture, p.Limit)
	}
	return nil
}

// String returns a compact form used in cache keys.
func (p Policy) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", p.Base, p.PawnMoved, p.Capture, p.Limit)
}

// shouldStop reports whether the search ends at halfStep, where prev is
// the game before and next the game after the move just played. The
// search never stops in or right out of a check, up to Limit.
func (p Policy) shouldStop(halfStep int, prev, next *game.Game) bool {
	if halfStep >= p.Limit {
		return true
	}
	if prev.InCheck() || next.InCheck() {
		return false
	}
	t := next.LastTransition()
	threshold := p.Base
	switch {
	case t.IsCapture():
		threshold = p.Capture
	case t.IsPawnMove() || prev.LastTransition().IsPawnMove():
		threshold = p.PawnMoved
	}
	return halfStep >= threshold
}
