package board

// Move encodes a chess move in 15 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-14: kind code (see the code* constants)
//
// For castling, from/to are the king's origin and destination.
type Move uint16

// MoveKind is the broad category of a move.
type MoveKind uint8

const (
	Normal MoveKind = iota
	Promotion
	EnPassant
	Castling
)

// CastlingSide selects king-side or queen-side castling.
type CastlingSide uint8

const (
	KingSide CastlingSide = iota
	QueenSide
)

// Kind codes stored in bits 12-14.
const (
	codeNormal uint16 = iota
	codePromoQueen
	codePromoRook
	codePromoKnight
	codePromoBishop
	codeEnPassant
	codeCastleKing
	codeCastleQueen
)

// Text codes, indexed by kind code.
const textCodes = "-QRKBecC"

// NoMove represents an invalid or null move (a1 to a1).
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	var code uint16
	switch promo {
	case Queen:
		code = codePromoQueen
	case Rook:
		code = codePromoRook
	case Knight:
		code = codePromoKnight
	case Bishop:
		code = codePromoBishop
	default:
		return NoMove
	}
	return Move(from) | Move(to)<<6 | Move(code)<<12
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(codeEnPassant)<<12
}

// NewCastling creates a castling move from the king's origin to its destination.
func NewCastling(from, to Square, side CastlingSide) Move {
	code := codeCastleKing
	if side == QueenSide {
		code = codeCastleQueen
	}
	return Move(from) | Move(to)<<6 | Move(code)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

func (m Move) code() uint16 {
	return uint16(m>>12) & 7
}

// Kind returns the move category.
func (m Move) Kind() MoveKind {
	switch c := m.code(); {
	case c == codeNormal:
		return Normal
	case c <= codePromoBishop:
		return Promotion
	case c == codeEnPassant:
		return EnPassant
	default:
		return Castling
	}
}

// Promotion returns the promotion piece type, NoPieceType for other kinds.
func (m Move) Promotion() PieceType {
	switch m.code() {
	case codePromoQueen:
		return Queen
	case codePromoRook:
		return Rook
	case codePromoKnight:
		return Knight
	case codePromoBishop:
		return Bishop
	}
	return NoPieceType
}

// CastlingSide returns the castling side; only valid for castling moves.
func (m Move) CastlingSide() CastlingSide {
	if m.code() == codeCastleQueen {
		return QueenSide
	}
	return KingSide
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Kind() == Promotion
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Kind() == Castling
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Kind() == EnPassant
}

// Mirror returns the move with both squares flipped vertically.
func (m Move) Mirror() Move {
	return Move(m.From().Mirror()) | Move(m.To().Mirror())<<6 | Move(m.code())<<12
}

// String returns the 5-character text form: origin, kind code, destination
// (e.g. "e2-e4", "a7Qa8", "e5ed6", "e1cg1").
func (m Move) String() string {
	return m.From().String() + string(textCodes[m.code()]) + m.To().String()
}

// ParseMove parses the 5-character text form of a move.
func ParseMove(s string) (Move, error) {
	if len(s) != 5 {
		return NoMove, formatError("move %q must have exactly 5 characters", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[3:5])
	if err != nil {
		return NoMove, err
	}

	code := -1
	for i := 0; i < len(textCodes); i++ {
		if textCodes[i] == s[2] {
			code = i
			break
		}
	}
	if code < 0 {
		return NoMove, formatError("move %q has unknown type code %q", s, s[2])
	}
	if from == to {
		return NoMove, formatError("move %q does not change square", s)
	}

	return Move(from) | Move(to)<<6 | Move(code)<<12, nil
}

// maxInlineMoves is the empirical maximum branching factor; longer lists
// spill over to the heap.
const maxInlineMoves = 80

// MoveList is a small-vector of moves that avoids allocations for the
// usual branching factor.
type MoveList struct {
	moves [maxInlineMoves]Move
	spill []Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	switch {
	case ml.spill != nil:
		ml.spill = append(ml.spill, m)
	case ml.count < maxInlineMoves:
		ml.moves[ml.count] = m
	default:
		ml.spill = make([]Move, maxInlineMoves, 2*maxInlineMoves)
		copy(ml.spill, ml.moves[:])
		ml.spill = append(ml.spill, m)
	}
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	if ml.spill != nil {
		return ml.spill[i]
	}
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	if ml.spill != nil {
		ml.spill[i], ml.spill[j] = ml.spill[j], ml.spill[i]
		return
	}
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
	ml.spill = nil
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.Get(i) == m {
			return true
		}
	}
	return false
}

// Slice returns a copy of the moves as a slice.
func (ml *MoveList) Slice() []Move {
	out := make([]Move, ml.count)
	for i := range out {
		out[i] = ml.Get(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler using the 5-character form.
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
