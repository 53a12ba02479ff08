package board

import (
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a validated State. Castling rights
// are limited to king/rook pairs still on their start squares.
func ParseFEN(fen string) (State, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return State{}, formatError("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	b, err := parsePlacement(parts[0])
	if err != nil {
		return State{}, err
	}

	var turn Color
	switch parts[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return State{}, formatError("invalid side to move: %s", parts[1])
	}

	castling, err := parseCastlingRights(parts[2])
	if err != nil {
		return State{}, err
	}

	enPassant := NoSquare
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return State{}, formatError("invalid en passant square: %s", parts[3])
		}
		enPassant = sq
	}

	s, err := NewManualState(b, turn, enPassant)
	if err != nil {
		return State{}, err
	}
	s.castling &= castling

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return State{}, formatError("invalid half-move clock: %s", parts[4])
		}
		s.halfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return State{}, formatError("invalid full-move number: %s", parts[5])
		}
		s.fullMoveNumber = fmn
	}
	return s, nil
}

// parsePlacement parses the piece placement field of a FEN string.
func parsePlacement(placement string) (Board, error) {
	var b Board
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return b, formatError("invalid piece placement: need 8 rows, got %d", len(rows))
	}

	for i, rowStr := range rows {
		row := 7 - i // FEN starts from row 8
		column := 0

		for _, c := range rowStr {
			if column > 7 {
				return b, formatError("too many squares in row %d", row+1)
			}
			if c >= '1' && c <= '8' {
				column += int(c - '0')
				continue
			}
			f := FigureFromChar(byte(c))
			if f == NoFigure {
				return b, formatError("invalid piece character: %c", c)
			}
			b.Put(NewSquare(column, row), f)
			column++
		}

		if column != 8 {
			return b, formatError("invalid number of squares in row %d: got %d", row+1, column)
		}
	}
	return b, nil
}

// parseCastlingRights parses the castling rights field of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	cr := NoCastling
	if castling == "-" {
		return cr, nil
	}
	for _, c := range castling {
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return cr, formatError("invalid castling character: %c", c)
		}
	}
	return cr, nil
}

// FEN returns the FEN representation of the state: placement, side to
// move, castling rights, en-passant target, half-move clock, full-move
// number.
func (s *State) FEN() string {
	var sb strings.Builder
	sb.WriteString(s.board.Placement())

	sb.WriteByte(' ')
	if s.turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(s.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(s.enPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(s.fullMoveNumber))
	return sb.String()
}
