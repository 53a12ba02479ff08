package board

// HasSufficientMaterial reports whether checkmate is still possible.
// More than six figures always count as sufficient. Otherwise any pawn,
// rook or queen is enough; a side with bishops on both square colors, a
// bishop and a knight, or more than two knights can still mate; and when
// both sides keep a minor piece a mate stays possible unless every minor
// piece left is a bishop on the same square color.
//
// Bishops are counted per square color, not per side: two bishops of one
// side on the same square color (only reachable by under-promotion) can
// never mate and count as insufficient.
func (b *Board) HasSufficientMaterial() bool {
	if b.count > 6 {
		return true
	}

	type minors struct {
		knights, lightBishops, darkBishops int
	}
	var side [2]minors

	for sq := Square(0); sq < NoSquare; sq++ {
		f := b.squares[sq]
		switch f.Type() {
		case Pawn, Rook, Queen:
			return true
		case Knight:
			side[f.Color()].knights++
		case Bishop:
			if sq.IsLight() {
				side[f.Color()].lightBishops++
			} else {
				side[f.Color()].darkBishops++
			}
		}
	}

	for _, m := range side {
		bishops := m.lightBishops + m.darkBishops
		switch {
		case m.lightBishops > 0 && m.darkBishops > 0:
			return true
		case bishops > 0 && m.knights > 0:
			return true
		case m.knights > 2:
			return true
		}
	}

	hasMinor := func(m minors) bool {
		return m.knights+m.lightBishops+m.darkBishops > 0
	}
	if !hasMinor(side[White]) || !hasMinor(side[Black]) {
		return false
	}
	knights := side[White].knights + side[Black].knights
	light := side[White].lightBishops + side[Black].lightBishops
	dark := side[White].darkBishops + side[Black].darkBishops
	return knights > 0 || (light > 0 && dark > 0)
}
