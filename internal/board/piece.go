package board

// Color represents the color of a figure or player.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor parses "white" or "black".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}
	return White, formatError("invalid color %q", s)
}

// forward returns the row delta a pawn of this color advances by.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// backRow returns the row the color's king and rooks start on.
func (c Color) backRow() int {
	if c == White {
		return 0
	}
	return 7
}

// pawnStartRow returns the row the color's pawns start on.
func (c Color) pawnStartRow() int {
	if c == White {
		return 1
	}
	return 6
}

// PieceType represents the kind of a chess figure.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Rook:
		return "Rook"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	const chars = " prnbqk"
	if pt > King {
		return ' '
	}
	return chars[pt]
}

// isSlider reports whether the piece type attacks along rays.
func (pt PieceType) isSlider() bool {
	return pt == Rook || pt == Bishop || pt == Queen
}

// slidesAlong reports whether the piece type attacks along rays of the
// given orientation.
func (pt PieceType) slidesAlong(d Direction) bool {
	if d.Straight() {
		return pt == Rook || pt == Queen
	}
	return pt == Bishop || pt == Queen
}

// Promotion piece sets.
var (
	// SearchPromotions only offers queen and knight: the two promotions
	// that cover every practical case. Rook and bishop promotions are
	// skipped to keep the search tree small.
	SearchPromotions = []PieceType{Queen, Knight}
	AllPromotions    = []PieceType{Queen, Rook, Knight, Bishop}
)

// Figure combines a PieceType and a Color into one byte.
// Encoded as: pieceType + 8 if white. The zero value is an empty square.
type Figure uint8

// NoFigure marks an empty square.
const NoFigure Figure = 0

const whiteBit Figure = 8

// NewFigure creates a Figure from PieceType and Color.
func NewFigure(pt PieceType, c Color) Figure {
	if pt == NoPieceType || pt > King {
		return NoFigure
	}
	if c == White {
		return Figure(pt) | whiteBit
	}
	return Figure(pt)
}

// Type returns the PieceType of the figure.
func (f Figure) Type() PieceType {
	return PieceType(f &^ whiteBit)
}

// Color returns the Color of the figure. Meaningless for NoFigure.
func (f Figure) Color() Color {
	if f&whiteBit != 0 {
		return White
	}
	return Black
}

// Is reports whether the figure is of the given type and color.
func (f Figure) Is(pt PieceType, c Color) bool {
	return f == NewFigure(pt, c)
}

// IsEmpty reports whether the figure marks an empty square.
func (f Figure) IsEmpty() bool {
	return f == NoFigure
}

// Mirror returns the same piece type with the other color.
func (f Figure) Mirror() Figure {
	if f == NoFigure {
		return f
	}
	return f ^ whiteBit
}

// String returns the FEN character for the figure.
// Uppercase for white, lowercase for black.
func (f Figure) String() string {
	if f == NoFigure {
		return " "
	}
	c := f.Type().Char()
	if f.Color() == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// Symbol returns the Unicode chess symbol of the figure.
func (f Figure) Symbol() string {
	for r, fig := range symbolFigures {
		if fig == f {
			return string(r)
		}
	}
	return " "
}

var symbolFigures = map[rune]Figure{
	'♔': NewFigure(King, White),
	'♕': NewFigure(Queen, White),
	'♖': NewFigure(Rook, White),
	'♗': NewFigure(Bishop, White),
	'♘': NewFigure(Knight, White),
	'♙': NewFigure(Pawn, White),
	'♚': NewFigure(King, Black),
	'♛': NewFigure(Queen, Black),
	'♜': NewFigure(Rook, Black),
	'♝': NewFigure(Bishop, Black),
	'♞': NewFigure(Knight, Black),
	'♟': NewFigure(Pawn, Black),
}

// FigureFromSymbol converts a Unicode chess symbol to a Figure.
func FigureFromSymbol(r rune) (Figure, bool) {
	f, ok := symbolFigures[r]
	return f, ok
}

// FigureFromChar converts a FEN character to a Figure.
func FigureFromChar(c byte) Figure {
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
		c += 'a' - 'A'
	}
	switch c {
	case 'p':
		return NewFigure(Pawn, color)
	case 'r':
		return NewFigure(Rook, color)
	case 'n':
		return NewFigure(Knight, color)
	case 'b':
		return NewFigure(Bishop, color)
	case 'q':
		return NewFigure(Queen, color)
	case 'k':
		return NewFigure(King, color)
	default:
		return NoFigure
	}
}
