// Package board implements the chess rules: squares, figures, moves, the
// 64-square board and the immutable game state with its transitions.
package board

import "fmt"

// Square is a board coordinate (0-63).
// Index = row*8 + column: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for the squares the rules refer to by name.
const (
	A1 Square = 0
	B1 Square = 1
	C1 Square = 2
	D1 Square = 3
	E1 Square = 4
	F1 Square = 5
	G1 Square = 6
	H1 Square = 7
	A8 Square = 56
	B8 Square = 57
	C8 Square = 58
	D8 Square = 59
	E8 Square = 60
	F8 Square = 61
	G8 Square = 62
	H8 Square = 63

	NoSquare Square = 64
)

// Column returns the column of the square (0-7, where 0=a, 7=h).
func (sq Square) Column() int {
	return int(sq) & 7
}

// Row returns the row of the square (0-7, where 0=1, 7=8).
func (sq Square) Row() int {
	return int(sq) >> 3
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.Column(), '1'+sq.Row())
}

// NewSquare creates a square from column and row (0-indexed).
func NewSquare(column, row int) Square {
	return Square(row*8 + column)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, formatError("invalid square %q", s)
	}

	column := int(s[0]) - 'a'
	row := int(s[1]) - '1'

	if column < 0 || column > 7 || row < 0 || row > 7 {
		return NoSquare, formatError("invalid square %q", s)
	}

	return NewSquare(column, row), nil
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror flips the square vertically (row r becomes row 7-r).
func (sq Square) Mirror() Square {
	if sq >= NoSquare {
		return sq
	}
	return sq ^ 56
}

// IsLight reports whether the square is a light square (h1 is light).
func (sq Square) IsLight() bool {
	return (sq.Column()+sq.Row())%2 == 1
}

// Offset returns the square shifted by the given column and row deltas.
// The second result is false when the target falls off the board.
func (sq Square) Offset(dc, dr int) (Square, bool) {
	c := sq.Column() + dc
	r := sq.Row() + dr
	if c < 0 || c > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(c, r), true
}

// Direction is a unit step on the board.
type Direction struct {
	DC, DR int
}

// Straight reports whether the direction runs along a row or column.
func (d Direction) Straight() bool {
	return d.DC == 0 || d.DR == 0
}

// Ray directions, straight ones first.
var (
	straightDirections = [4]Direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	diagonalDirections = [4]Direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	allDirections      = [8]Direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	knightOffsets      = [8]Direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// DirectionBetween returns the unit direction leading from a to b and
// whether a and b share a row, column or diagonal.
func DirectionBetween(a, b Square) (Direction, bool) {
	if a == b {
		return Direction{}, false
	}
	dc := b.Column() - a.Column()
	dr := b.Row() - a.Row()
	if dc != 0 && dr != 0 && abs(dc) != abs(dr) {
		return Direction{}, false
	}
	return Direction{sign(dc), sign(dr)}, true
}

// SquaresBetween lists the squares strictly between a and b on a shared
// line. It returns nil when a and b are not aligned or adjacent.
func SquaresBetween(a, b Square) []Square {
	d, ok := DirectionBetween(a, b)
	if !ok {
		return nil
	}
	var between []Square
	for sq, ok := a.Offset(d.DC, d.DR); ok && sq != b; sq, ok = sq.Offset(d.DC, d.DR) {
		between = append(between, sq)
	}
	return between
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
