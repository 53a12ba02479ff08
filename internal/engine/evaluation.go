package engine

import (
	"fmt"
	"strconv"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// Kind is the category of an Evaluation.
type Kind uint8

const (
	KindNumeric Kind = iota
	KindWin
	KindLose
	KindDraw
)

var kindNames = [...]string{"numeric", "win", "lose", "draw"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown evaluation kind %q", text)
}

// DrawReason tells why a game is drawn. The order is the tie-break order
// between draws.
type DrawReason uint8

const (
	Stalemate DrawReason = iota
	InsufficientMaterial
	ThreeTimesRepetition
	NoChangeIn50Moves
)

var drawNames = [...]string{"stalemate", "insufficientMaterial", "threeTimesRepetition", "noChangeIn50Moves"}

// String returns the reason name.
func (r DrawReason) String() string {
	if int(r) < len(drawNames) {
		return drawNames[r]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r DrawReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *DrawReason) UnmarshalText(text []byte) error {
	for i, name := range drawNames {
		if name == string(text) {
			*r = DrawReason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown draw reason %q", text)
}

// drawReasonOf maps a draw stop reason of the rules engine.
func drawReasonOf(r board.StopReason) (DrawReason, bool) {
	switch r {
	case board.InsufficientMaterial:
		return InsufficientMaterial, true
	case board.ThreeTimesRepetition:
		return ThreeTimesRepetition, true
	case board.NoChangeIn50Moves:
		return NoChangeIn50Moves, true
	}
	return 0, false
}

// Evaluation is the value of a move for the side that plays it.
// HalfSteps counts the plies after the evaluated move (0 = the move itself
// mates). Value is the score of a Numeric evaluation and the material
// tie-break of a Lose.
type Evaluation struct {
	Kind      Kind       `json:"kind"`
	HalfSteps int        `json:"halfSteps,omitempty"`
	Value     float64    `json:"value,omitempty"`
	Draw      DrawReason `json:"draw,omitempty"`
}

// WinIn is a forced mate delivered at the given half-step.
func WinIn(halfSteps int) Evaluation {
	return Evaluation{Kind: KindWin, HalfSteps: halfSteps}
}

// LoseIn is a forced mate suffered at the given half-step.
func LoseIn(halfSteps int, value float64) Evaluation {
	return Evaluation{Kind: KindLose, HalfSteps: halfSteps, Value: value}
}

// Numeric is a heuristic score; positive favors the evaluated side.
func Numeric(value float64) Evaluation {
	return Evaluation{Kind: KindNumeric, Value: value}
}

// Drawn is a draw for the given reason.
func Drawn(reason DrawReason) Evaluation {
	return Evaluation{Kind: KindDraw, Draw: reason}
}

// Sentinels below and above every evaluation the search produces.
var (
	lowest  = LoseIn(-2, 0)
	highest = WinIn(-2)
)

// rank orders the categories: lose < negative < draw < positive < win.
func (e Evaluation) rank() int {
	switch e.Kind {
	case KindLose:
		return 0
	case KindNumeric:
		if e.Value < 0 {
			return 1
		}
		return 3
	case KindDraw:
		return 2
	}
	return 4
}

// Compare returns -1, 0 or +1 as a is worse than, equal to or better
// than b.
func Compare(a, b Evaluation) int {
	if ra, rb := a.rank(), b.rank(); ra != rb {
		return cmpInt(ra, rb)
	}
	switch a.Kind {
	case KindWin:
		return cmpInt(b.HalfSteps, a.HalfSteps)
	case KindLose:
		if a.HalfSteps != b.HalfSteps {
			return cmpInt(a.HalfSteps, b.HalfSteps)
		}
		return cmpFloat(a.Value, b.Value)
	case KindDraw:
		return cmpInt(int(a.Draw), int(b.Draw))
	}
	return cmpFloat(a.Value, b.Value)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsTerminal reports whether the evaluation is a forced mate either way.
func (e Evaluation) IsTerminal() bool {
	return e.Kind == KindWin || e.Kind == KindLose
}

// NumericValue returns the score used when comparing close candidates. A
// draw counts as 0.
func (e Evaluation) NumericValue() float64 {
	if e.Kind == KindDraw {
		return 0
	}
	return e.Value
}

// isLoseIn reports whether e is a loss at exactly the given half-step.
func (e Evaluation) isLoseIn(halfSteps int) bool {
	return e.Kind == KindLose && e.HalfSteps == halfSteps
}

// isWinIn reports whether e is a win at exactly the given half-step.
func (e Evaluation) isWinIn(halfSteps int) bool {
	return e.Kind == KindWin && e.HalfSteps == halfSteps
}

// String returns a human-readable form, e.g. "win in 0", "lose in 3",
// "draw (stalemate)" or "+0.35". Mates are counted in half-steps.
func (e Evaluation) String() string {
	switch e.Kind {
	case KindWin:
		return "win in " + strconv.Itoa(e.HalfSteps)
	case KindLose:
		return "lose in " + strconv.Itoa(e.HalfSteps)
	case KindDraw:
		return "draw (" + e.Draw.String() + ")"
	}
	return fmt.Sprintf("%+.2f", e.Value)
}
