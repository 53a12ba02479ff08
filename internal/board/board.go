package board

import (
	"strconv"
	"strings"
)

// Board is the 64-square figure array plus a running figure count.
// Boards are values: copying one copies the whole placement.
type Board struct {
	squares [64]Figure
	count   int
}

// At returns the figure on the square, NoFigure if empty.
func (b *Board) At(sq Square) Figure {
	return b.squares[sq]
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.squares[sq] == NoFigure
}

// Put places a figure on a square, replacing whatever stood there.
func (b *Board) Put(sq Square, f Figure) {
	old := b.squares[sq]
	if old == NoFigure && f != NoFigure {
		b.count++
	} else if old != NoFigure && f == NoFigure {
		b.count--
	}
	b.squares[sq] = f
}

// Remove empties a square and returns the figure that stood there.
func (b *Board) Remove(sq Square) Figure {
	f := b.squares[sq]
	b.Put(sq, NoFigure)
	return f
}

// Count returns the number of figures on the board.
func (b *Board) Count() int {
	return b.count
}

// Fingerprint is the packed board used for repetition equality.
type Fingerprint [4]uint64

// Fingerprint packs every square into 4 bits (0=empty, 1-6=piece type,
// +8 if white), 16 squares per word.
func (b *Board) Fingerprint() Fingerprint {
	var fp Fingerprint
	for sq := 0; sq < 64; sq++ {
		fp[sq>>4] |= uint64(b.squares[sq]) << (uint(sq&15) * 4)
	}
	return fp
}

// DecodeFingerprint rebuilds the board a fingerprint was taken from.
func DecodeFingerprint(fp Fingerprint) Board {
	var b Board
	for sq := 0; sq < 64; sq++ {
		f := Figure((fp[sq>>4] >> (uint(sq&15) * 4)) & 0xF)
		b.Put(Square(sq), f)
	}
	return b
}

// Placement returns the FEN piece-placement field.
func (b *Board) Placement() string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		empty := 0
		for column := 0; column < 8; column++ {
			f := b.At(NewSquare(column, row))
			if f == NoFigure {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(f.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Mirror returns the board flipped vertically with all colors swapped.
func (b *Board) Mirror() Board {
	var m Board
	for sq := Square(0); sq < NoSquare; sq++ {
		if f := b.At(sq); f != NoFigure {
			m.Put(sq.Mirror(), f.Mirror())
		}
	}
	return m
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		sb.WriteString(strconv.Itoa(row + 1))
		sb.WriteString("  ")
		for column := 0; column < 8; column++ {
			f := b.At(NewSquare(column, row))
			if f == NoFigure {
				sb.WriteString(". ")
			} else {
				sb.WriteString(f.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
