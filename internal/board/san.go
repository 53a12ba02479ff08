package board

import (
	"strings"
)

const sanLetters = " PRNBQK"

// SAN returns the move in Standard Algebraic Notation. m must be legal in s.
func (s *State) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}
	from, to := m.From(), m.To()
	f := s.board.At(from)
	if f == NoFigure {
		return m.String()
	}

	var sb strings.Builder
	if m.IsCastling() {
		if m.CastlingSide() == KingSide {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	} else {
		pt := f.Type()
		if pt != Pawn {
			sb.WriteByte(sanLetters[pt])
			sb.WriteString(s.disambiguation(m, pt))
		}
		if m.IsEnPassant() || !s.board.IsEmpty(to) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.Column()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(sanLetters[m.Promotion()])
		}
	}

	next, _ := s.Apply(m)
	if checkers := next.Checkers(); checkers.Len() > 0 {
		if next.IsCheckmate(checkers) {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// disambiguation returns the origin column, row or square needed when
// another figure of the same type can reach the same destination.
func (s *State) disambiguation(m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	sameColumn, sameRow, ambiguous := false, false, false

	moves := s.LegalMoves(SearchPromotions)
	for i := 0; i < moves.Len(); i++ {
		other := moves.Get(i).From()
		if moves.Get(i).To() != to || other == from || s.board.At(other).Type() != pt {
			continue
		}
		ambiguous = true
		if other.Column() == from.Column() {
			sameColumn = true
		}
		if other.Row() == from.Row() {
			sameRow = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameColumn:
		return string(rune('a' + from.Column()))
	case !sameRow:
		return string(rune('1' + from.Row()))
	}
	return from.String()
}

// ParseSAN finds the legal move described by a SAN string.
func (s *State) ParseSAN(san string) (Move, error) {
	text := strings.TrimRight(strings.TrimSpace(san), "+#")

	if text == "O-O" || text == "0-0" || text == "O-O-O" || text == "0-0-0" {
		side := KingSide
		if len(text) == 5 {
			side = QueenSide
		}
		dest, ok := s.CastlingDestination(s.turn, side)
		if !ok {
			return NoMove, MoveError("%s cannot castle (%s)", s.turn, san)
		}
		return NewCastling(kingStart(s.turn), dest, side), nil
	}

	promo := NoPieceType
	if idx := strings.IndexByte(text, '='); idx >= 0 && idx+1 < len(text) {
		promo = pieceTypeFromLetter(text[idx+1])
		if promo == NoPieceType || promo == King || promo == Pawn {
			return NoMove, formatError("invalid promotion in %q", san)
		}
		text = text[:idx]
	}
	isCapture := strings.Contains(text, "x")
	text = strings.ReplaceAll(text, "x", "")

	pt := Pawn
	if len(text) > 0 && text[0] >= 'A' && text[0] <= 'Z' {
		pt = pieceTypeFromLetter(text[0])
		if pt == NoPieceType {
			return NoMove, formatError("invalid piece letter in %q", san)
		}
		text = text[1:]
	}
	if len(text) < 2 {
		return NoMove, formatError("invalid SAN %q", san)
	}
	dest, err := ParseSquare(text[len(text)-2:])
	if err != nil {
		return NoMove, err
	}

	column, row := -1, -1
	for _, c := range text[:len(text)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			column = int(c - 'a')
		case c >= '1' && c <= '8':
			row = int(c - '1')
		}
	}

	moves := s.LegalMoves(AllPromotions)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		from := m.From()
		switch {
		case m.To() != dest, m.IsCastling():
			continue
		case s.board.At(from).Type() != pt:
			continue
		case column >= 0 && from.Column() != column, row >= 0 && from.Row() != row:
			continue
		case isCapture && !m.IsEnPassant() && s.board.IsEmpty(dest):
			continue
		case m.IsPromotion() != (promo != NoPieceType), promo != NoPieceType && m.Promotion() != promo:
			continue
		}
		return m, nil
	}
	return NoMove, MoveError("no legal move matches %q", san)
}

func pieceTypeFromLetter(c byte) PieceType {
	if i := strings.IndexByte(sanLetters, c); i > 0 {
		return PieceType(i)
	}
	return NoPieceType
}

// MovesToSAN converts a sequence of moves played from s to SAN.
func MovesToSAN(s State, moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = s.SAN(m)
		s, _ = s.Apply(m)
	}
	return result
}
