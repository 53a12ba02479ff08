package board

// IsCheckmate reports whether the side to move, checked by the given
// figures, has no way out. Against two checkers only a king step can help;
// against one, a capture of the checker or an interposition by a piece
// that is not pinned may help as well. Every candidate answer is verified
// by playing it.
func (s *State) IsCheckmate(checkers Checkers) bool {
	switch n := checkers.Len(); {
	case n == 0:
		return false
	case n >= 2:
		return !s.kingCanStep()
	}
	if s.kingCanStep() {
		return false
	}
	return !s.canCaptureOrInterpose(checkers.At(0))
}

// IsStalemate reports whether the side to move is not in check but has no
// legal move.
func (s *State) IsStalemate() bool {
	if s.InCheck() {
		return false
	}
	return s.LegalMoves(SearchPromotions).Len() == 0
}

// kingCanStep reports whether the king of the side to move can step to an
// adjacent square that is neither own-occupied nor attacked.
func (s *State) kingCanStep() bool {
	us := s.turn
	king := s.kings[us]
	for _, d := range allDirections {
		to, ok := king.Offset(d.DC, d.DR)
		if !ok {
			continue
		}
		if f := s.board.At(to); f != NoFigure && f.Color() == us {
			continue
		}
		if s.IsLegal(NewMove(king, to)) {
			return true
		}
	}
	return false
}

// canCaptureOrInterpose reports whether a non-king, non-pinned figure can
// take the checker or step between it and the king. Knight and pawn checks
// have no interposition squares.
func (s *State) canCaptureOrInterpose(checker Square) bool {
	us := s.turn
	king := s.kings[us]
	b := &s.board

	targets := []Square{checker}
	if b.At(checker).Type().isSlider() {
		targets = append(targets, SquaresBetween(king, checker)...)
	}
	pinned := s.pinnedPieces()

	for sq := Square(0); sq < NoSquare; sq++ {
		f := b.At(sq)
		if f == NoFigure || f.Color() != us || f.Type() == King || pinned&(1<<sq) != 0 {
			continue
		}
		for _, t := range targets {
			if m, ok := s.reach(sq, f, t); ok && s.IsLegal(m) {
				return true
			}
		}
		// a checking pawn that just made a double step can be taken en passant
		if f.Type() == Pawn && s.enPassant != NoSquare && b.At(checker).Type() == Pawn {
			if behind, _ := s.enPassant.Offset(0, -us.forward()); behind == checker && b.attacks(sq, f, s.enPassant) {
				if s.IsLegal(NewEnPassant(sq, s.enPassant)) {
					return true
				}
			}
		}
	}
	return false
}

// reach returns the move that brings figure f from sq to target, if its
// movement rules allow it. target is either the checker or an empty square.
func (s *State) reach(from Square, f Figure, target Square) (Move, bool) {
	b := &s.board
	if f.Type() != Pawn {
		if b.attacks(from, f, target) {
			return NewMove(from, target), true
		}
		return NoMove, false
	}

	ok := false
	if b.IsEmpty(target) {
		fwd := f.Color().forward()
		if one, valid := from.Offset(0, fwd); valid && b.IsEmpty(one) {
			if one == target {
				ok = true
			} else if two, valid := one.Offset(0, fwd); valid && two == target && from.Row() == f.Color().pawnStartRow() {
				ok = true
			}
		}
	} else {
		ok = b.attacks(from, f, target)
	}
	if !ok {
		return NoMove, false
	}
	if target.Row() == 0 || target.Row() == 7 {
		return NewPromotion(from, target, Queen), true
	}
	return NewMove(from, target), true
}

// pinnedPieces returns a bit set of the side to move's figures that are
// pinned: scanning outward from the king they are the only own figure
// before an enemy slider attacking along that line.
func (s *State) pinnedPieces() uint64 {
	us := s.turn
	king := s.kings[us]
	b := &s.board
	var pinned uint64

	for _, d := range allDirections {
		first, _, ok := b.firstOccupied(king, d)
		if !ok || b.At(first).Color() != us {
			continue
		}
		behind, _, ok := b.firstOccupied(first, d)
		if !ok {
			continue
		}
		if f := b.At(behind); f.Color() != us && f.Type().slidesAlong(d) {
			pinned |= 1 << first
		}
	}
	return pinned
}
