package board

import "fmt"

// ErrorKind classifies an Error.
type ErrorKind uint8

const (
	// IllegalFormat: a malformed square, move, figure or config token.
	IllegalFormat ErrorKind = iota
	// IllegalConfig: a manual position violates the placement invariants.
	IllegalConfig
	// IllegalMove: a well-formed move the position does not allow.
	IllegalMove
	// HighLevel: the game reached (or starts in) a terminal condition.
	HighLevel
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case IllegalFormat:
		return "IllegalFormat"
	case IllegalConfig:
		return "IllegalConfig"
	case IllegalMove:
		return "IllegalMove"
	case HighLevel:
		return "HighLevelErr"
	}
	return "Unknown"
}

// StopReason tells why a game cannot continue. Ongoing is the zero value.
type StopReason uint8

const (
	Ongoing StopReason = iota
	KingInCheckAfterMove
	InsufficientMaterial
	ThreeTimesRepetition
	NoChangeIn50Moves
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case Ongoing:
		return "Ongoing"
	case KingInCheckAfterMove:
		return "KingInCheckAfterMove"
	case InsufficientMaterial:
		return "InsufficientMaterial"
	case ThreeTimesRepetition:
		return "ThreeTimesRepetition"
	case NoChangeIn50Moves:
		return "NoChangeIn50Moves"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *StopReason) UnmarshalText(text []byte) error {
	for c := Ongoing; c <= NoChangeIn50Moves; c++ {
		if c.String() == string(text) {
			*r = c
			return nil
		}
	}
	return FormatError("unknown stop reason %q", text)
}

// Error is the single error type of the rules engine.
type Error struct {
	Kind   ErrorKind
	Reason StopReason // set for HighLevel errors
	Msg    string
}

func (e *Error) Error() string {
	if e.Kind == HighLevel {
		return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches errors of the same kind (and reason, for HighLevel errors),
// so errors.Is(err, &Error{Kind: IllegalConfig}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Kind != HighLevel || t.Reason == Ongoing || t.Reason == e.Reason
}

func formatError(format string, args ...any) error {
	return &Error{Kind: IllegalFormat, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError builds an IllegalConfig error.
func ConfigError(format string, args ...any) error {
	return &Error{Kind: IllegalConfig, Msg: fmt.Sprintf(format, args...)}
}

// FormatError builds an IllegalFormat error.
func FormatError(format string, args ...any) error {
	return formatError(format, args...)
}

// MoveError builds an IllegalMove error.
func MoveError(format string, args ...any) error {
	return &Error{Kind: IllegalMove, Msg: fmt.Sprintf(format, args...)}
}

// StoppedError builds a HighLevel error carrying the terminal reason.
func StoppedError(reason StopReason, format string, args ...any) error {
	return &Error{Kind: HighLevel, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}
