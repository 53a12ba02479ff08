package board

// PseudoLegalMoves appends every pseudo-legal move of the side to move:
// moves that follow the movement rules but may leave the own king in check.
// Promotions are generated for the given piece types only.
func (s *State) PseudoLegalMoves(ml *MoveList, promotions []PieceType) {
	s.generate(ml, s.turn, promotions)
}

// CountPseudoLegalMoves returns the number of pseudo-legal moves color
// could make if it were its turn (en passant only counts for the side to
// move). Used as a mobility measure.
func (s *State) CountPseudoLegalMoves(c Color) int {
	var ml MoveList
	s.generate(&ml, c, SearchPromotions)
	return ml.Len()
}

// LegalMoves returns all moves of the side to move that do not leave its
// own king in check.
func (s *State) LegalMoves(promotions []PieceType) *MoveList {
	var pseudo MoveList
	s.generate(&pseudo, s.turn, promotions)

	legal := NewMoveList()
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if s.IsLegal(m) {
			legal.Add(m)
		}
	}
	return legal
}

// IsLegal reports whether the pseudo-legal move m keeps the mover's king
// out of check.
func (s *State) IsLegal(m Move) bool {
	next, _ := s.Apply(m)
	return !next.board.IsKingInCheck(next.kings[s.turn], s.turn)
}

func (s *State) generate(ml *MoveList, us Color, promotions []PieceType) {
	b := &s.board
	for sq := Square(0); sq < NoSquare; sq++ {
		f := b.At(sq)
		if f == NoFigure || f.Color() != us {
			continue
		}
		switch f.Type() {
		case Pawn:
			s.generatePawnMoves(ml, sq, us, promotions)
		case Knight:
			s.generateJumps(ml, sq, us, knightOffsets[:])
		case Bishop:
			s.generateSlides(ml, sq, us, diagonalDirections[:])
		case Rook:
			s.generateSlides(ml, sq, us, straightDirections[:])
		case Queen:
			s.generateSlides(ml, sq, us, allDirections[:])
		case King:
			s.generateJumps(ml, sq, us, allDirections[:])
			s.generateCastlingMoves(ml, us)
		}
	}
}

// generatePawnMoves generates steps, double steps, captures (including en
// passant) and promotions for the pawn on from.
func (s *State) generatePawnMoves(ml *MoveList, from Square, us Color, promotions []PieceType) {
	b := &s.board
	fwd := us.forward()

	if one, ok := from.Offset(0, fwd); ok && b.IsEmpty(one) {
		addPawnMove(ml, from, one, promotions)
		if from.Row() == us.pawnStartRow() {
			if two, ok := one.Offset(0, fwd); ok && b.IsEmpty(two) {
				ml.Add(NewMove(from, two))
			}
		}
	}

	for _, dc := range [2]int{-1, 1} {
		to, ok := from.Offset(dc, fwd)
		if !ok {
			continue
		}
		target := b.At(to)
		switch {
		case target != NoFigure && target.Color() != us:
			addPawnMove(ml, from, to, promotions)
		case target == NoFigure && to == s.enPassant && us == s.turn:
			ml.Add(NewEnPassant(from, to))
		}
	}
}

// addPawnMove adds a pawn move, expanded into promotions on the last row.
func addPawnMove(ml *MoveList, from, to Square, promotions []PieceType) {
	if to.Row() == 0 || to.Row() == 7 {
		for _, pt := range promotions {
			ml.Add(NewPromotion(from, to, pt))
		}
		return
	}
	ml.Add(NewMove(from, to))
}

// generateJumps generates single-step moves (knight and king).
func (s *State) generateJumps(ml *MoveList, from Square, us Color, offsets []Direction) {
	for _, o := range offsets {
		to, ok := from.Offset(o.DC, o.DR)
		if !ok {
			continue
		}
		if f := s.board.At(to); f == NoFigure || f.Color() != us {
			ml.Add(NewMove(from, to))
		}
	}
}

// generateSlides walks each direction until blocked; an enemy blocker is
// included, an own one is not.
func (s *State) generateSlides(ml *MoveList, from Square, us Color, dirs []Direction) {
	for _, d := range dirs {
		for to, ok := from.Offset(d.DC, d.DR); ok; to, ok = to.Offset(d.DC, d.DR) {
			f := s.board.At(to)
			if f == NoFigure {
				ml.Add(NewMove(from, to))
				continue
			}
			if f.Color() != us {
				ml.Add(NewMove(from, to))
			}
			break
		}
	}
}

func (s *State) generateCastlingMoves(ml *MoveList, us Color) {
	for _, side := range [2]CastlingSide{KingSide, QueenSide} {
		if dest, ok := s.CastlingDestination(us, side); ok {
			ml.Add(NewCastling(kingStart(us), dest, side))
		}
	}
}

// Perft counts the leaf nodes of the legal move tree at the given depth,
// with all promotion types. It is the standard move generation check.
func (s *State) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := s.LegalMoves(AllPromotions)
	if depth == 1 {
		return int64(moves.Len())
	}
	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		next, _ := s.Apply(moves.Get(i))
		nodes += next.Perft(depth - 1)
	}
	return nodes
}
