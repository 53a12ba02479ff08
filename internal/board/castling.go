package board

// CastlingRights holds the four one-way castling latches. A latch starts
// set and is cleared once its king or rook leaves (or is captured on) its
// start square; it is never set again.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

func castlingLatch(c Color, side CastlingSide) CastlingRights {
	switch {
	case c == White && side == KingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case side == KingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// CanCastle returns true if the latch for the color and side is still set.
func (cr CastlingRights) CanCastle(c Color, side CastlingSide) bool {
	return cr&castlingLatch(c, side) != 0
}

// afterMove clears the latches whose king or rook start square is touched
// by a move from -> to.
func (cr CastlingRights) afterMove(from, to Square) CastlingRights {
	for _, sq := range [2]Square{from, to} {
		switch sq {
		case E1:
			cr &^= WhiteKingSideCastle | WhiteQueenSideCastle
		case H1:
			cr &^= WhiteKingSideCastle
		case A1:
			cr &^= WhiteQueenSideCastle
		case E8:
			cr &^= BlackKingSideCastle | BlackQueenSideCastle
		case H8:
			cr &^= BlackKingSideCastle
		case A8:
			cr &^= BlackQueenSideCastle
		}
	}
	return cr
}

// Mirror swaps the white and black latches.
func (cr CastlingRights) Mirror() CastlingRights {
	return (cr&(WhiteKingSideCastle|WhiteQueenSideCastle))<<2 | (cr&(BlackKingSideCastle|BlackQueenSideCastle))>>2
}

// rightsFromPlacement sets every latch whose king and rook stand on their
// classical start squares.
func rightsFromPlacement(b *Board) CastlingRights {
	cr := NoCastling
	for _, c := range [2]Color{White, Black} {
		if b.At(kingStart(c)) != NewFigure(King, c) {
			continue
		}
		for _, side := range [2]CastlingSide{KingSide, QueenSide} {
			rookFrom, _ := castlingRookSquares(c, side)
			if b.At(rookFrom) == NewFigure(Rook, c) {
				cr |= castlingLatch(c, side)
			}
		}
	}
	return cr
}

func kingStart(c Color) Square {
	return NewSquare(4, c.backRow())
}

// castlingKingDestination returns where the king lands (g- or c-file).
func castlingKingDestination(c Color, side CastlingSide) Square {
	if side == KingSide {
		return NewSquare(6, c.backRow())
	}
	return NewSquare(2, c.backRow())
}

// castlingRookSquares returns the rook's origin and landing square.
func castlingRookSquares(c Color, side CastlingSide) (from, to Square) {
	row := c.backRow()
	if side == KingSide {
		return NewSquare(7, row), NewSquare(5, row)
	}
	return NewSquare(0, row), NewSquare(3, row)
}

// CastlingDestination checks whether color may castle to side right now
// and returns the king's destination square. Castling needs the latch, an
// empty path between king and rook, and a king that neither starts on,
// passes through nor lands on an attacked square.
func (s *State) CastlingDestination(c Color, side CastlingSide) (Square, bool) {
	if !s.castling.CanCastle(c, side) {
		return NoSquare, false
	}
	b := &s.board
	king := kingStart(c)
	rookFrom, _ := castlingRookSquares(c, side)
	if b.At(king) != NewFigure(King, c) || b.At(rookFrom) != NewFigure(Rook, c) {
		return NoSquare, false
	}
	for _, sq := range SquaresBetween(king, rookFrom) {
		if !b.IsEmpty(sq) {
			return NoSquare, false
		}
	}

	// The start square check also sees rank attacks, which the transit
	// squares would miss because the king blocks the rank.
	them := c.Other()
	if b.IsAttacked(king, them) {
		return NoSquare, false
	}
	dest := castlingKingDestination(c, side)
	probe := *b
	probe.Remove(king)
	for _, sq := range SquaresBetween(king, dest) {
		if probe.IsAttacked(sq, them) {
			return NoSquare, false
		}
	}
	if probe.IsAttacked(dest, them) {
		return NoSquare, false
	}
	return dest, true
}
