package board

// Checkers holds the squares of the figures giving check, at most three.
type Checkers struct {
	squares [3]Square
	n       int
}

// Len returns the number of checkers.
func (c Checkers) Len() int {
	return c.n
}

// At returns the i-th checker square.
func (c Checkers) At(i int) Square {
	return c.squares[i]
}

func (c *Checkers) add(sq Square) {
	for i := 0; i < c.n; i++ {
		if c.squares[i] == sq {
			return
		}
	}
	if c.n < len(c.squares) {
		c.squares[c.n] = sq
		c.n++
	}
}

// firstOccupied walks from sq along d and returns the first non-empty
// square together with its distance in steps.
func (b *Board) firstOccupied(sq Square, d Direction) (Square, int, bool) {
	dist := 0
	for {
		next, ok := sq.Offset(d.DC, d.DR)
		if !ok {
			return NoSquare, 0, false
		}
		dist++
		if b.squares[next] != NoFigure {
			return next, dist, true
		}
		sq = next
	}
}

// rayAttacker reports whether figure f, found dist steps away from target
// in direction d (target -> f), attacks target along that ray.
func rayAttacker(f Figure, d Direction, dist int) bool {
	pt := f.Type()
	if pt.slidesAlong(d) {
		return true
	}
	if dist != 1 {
		return false
	}
	switch pt {
	case King:
		return true
	case Pawn:
		// pawns capture diagonally forward, so the target sits one row
		// ahead of the pawn from the pawn's point of view
		return !d.Straight() && d.DR == -f.Color().forward()
	}
	return false
}

// IsAttacked reports whether sq is attacked by any figure of color by.
// Rays stop at their first occupant, which is then classified by its type
// and the relative direction.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	for _, d := range allDirections {
		occ, dist, ok := b.firstOccupied(sq, d)
		if !ok {
			continue
		}
		f := b.squares[occ]
		if f.Color() == by && rayAttacker(f, d, dist) {
			return true
		}
	}
	knight := NewFigure(Knight, by)
	for _, o := range knightOffsets {
		if t, ok := sq.Offset(o.DC, o.DR); ok && b.squares[t] == knight {
			return true
		}
	}
	return false
}

// IsKingInCheck reports whether the king of the given color standing on
// king is attacked.
func (b *Board) IsKingInCheck(king Square, color Color) bool {
	return b.IsAttacked(king, color.Other())
}

// AttackersOf collects the figures of color by that attack sq.
func (b *Board) AttackersOf(sq Square, by Color) Checkers {
	var c Checkers
	for _, d := range allDirections {
		occ, dist, ok := b.firstOccupied(sq, d)
		if !ok {
			continue
		}
		f := b.squares[occ]
		if f.Color() == by && rayAttacker(f, d, dist) {
			c.add(occ)
		}
	}
	knight := NewFigure(Knight, by)
	for _, o := range knightOffsets {
		if t, ok := sq.Offset(o.DC, o.DR); ok && b.squares[t] == knight {
			c.add(t)
		}
	}
	return c
}

// pathClear reports whether every square strictly between a and b is empty.
// a and b must be aligned.
func (b *Board) pathClear(a, target Square, d Direction) bool {
	for sq, ok := a.Offset(d.DC, d.DR); ok && sq != target; sq, ok = sq.Offset(d.DC, d.DR) {
		if b.squares[sq] != NoFigure {
			return false
		}
	}
	return true
}

// attacks reports whether figure f standing on from attacks target.
func (b *Board) attacks(from Square, f Figure, target Square) bool {
	if from == target {
		return false
	}
	dc := target.Column() - from.Column()
	dr := target.Row() - from.Row()
	switch pt := f.Type(); pt {
	case Pawn:
		return dr == f.Color().forward() && abs(dc) == 1
	case Knight:
		return (abs(dc) == 1 && abs(dr) == 2) || (abs(dc) == 2 && abs(dr) == 1)
	case King:
		return abs(dc) <= 1 && abs(dr) <= 1
	case Rook, Bishop, Queen:
		d, ok := DirectionBetween(from, target)
		return ok && pt.slidesAlong(d) && b.pathClear(from, target, d)
	}
	return false
}

// discoveredAttacker looks along the line from king through via (a square
// that was just vacated) and reports the first figure behind it if it is
// a slider of color by that now attacks the king.
func (b *Board) discoveredAttacker(king, via Square, by Color) (Square, bool) {
	d, ok := DirectionBetween(king, via)
	if !ok {
		return NoSquare, false
	}
	occ, _, ok := b.firstOccupied(king, d)
	if !ok {
		return NoSquare, false
	}
	f := b.squares[occ]
	if f.Color() == by && f.Type().slidesAlong(d) {
		return occ, true
	}
	return NoSquare, false
}

// Checkers returns the figures checking the side to move by scanning all
// rays and knight jumps around its king.
func (s *State) Checkers() Checkers {
	return s.board.AttackersOf(s.kings[s.turn], s.turn.Other())
}

// InCheck reports whether the side to move is in check.
func (s *State) InCheck() bool {
	return s.board.IsKingInCheck(s.kings[s.turn], s.turn)
}

// CheckersAfter finds the checks given by move m, which led to s. Instead
// of a full rescan only two lines matter: the moved figure itself (the rook
// for castling, the new piece for promotions) and the line through the
// vacated origin (plus the captured pawn's square for en passant).
func (s *State) CheckersAfter(m Move) Checkers {
	var c Checkers
	attacker := s.turn.Other()
	king := s.kings[s.turn]
	b := &s.board

	dest := m.To()
	if m.IsCastling() {
		_, dest = castlingRookSquares(attacker, m.CastlingSide())
	}
	if f := b.At(dest); f != NoFigure && f.Color() == attacker && b.attacks(dest, f, king) {
		c.add(dest)
	}

	if sq, ok := b.discoveredAttacker(king, m.From(), attacker); ok {
		c.add(sq)
	}
	switch m.Kind() {
	case EnPassant:
		captured := NewSquare(m.To().Column(), m.From().Row())
		if sq, ok := b.discoveredAttacker(king, captured, attacker); ok {
			c.add(sq)
		}
	case Castling:
		rookFrom, _ := castlingRookSquares(attacker, m.CastlingSide())
		if sq, ok := b.discoveredAttacker(king, rookFrom, attacker); ok {
			c.add(sq)
		}
	}
	return c
}
