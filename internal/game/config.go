package game

import (
	"strings"
	"unicode/utf8"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// ParseConfig builds a game from its text form:
//
//   - ""                          the classical start
//   - "e2-e4 e7-e5 g1-f3"        moves played from the classical start
//   - "white ♔e1 ♚e8 ♙e2 [Ee3]"  side to move, figures, optional en passant target
//   - "fen <FEN>"                a FEN record
//
// Both manual forms may be followed by "moves <move>..." to continue from
// the given position. A move list that runs into a finished game fails
// with a HighLevel error, as does a manual position whose side not to move
// is in check or that lacks the material to mate.
func ParseConfig(text string, opts ...Option) (*Game, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return NewClassic(opts...), nil
	}

	var (
		s   board.State
		err error
	)
	setup, moves := splitMoves(tokens)
	switch tokens[0] {
	case "white", "black":
		s, err = parseDescription(setup)
	case "fen":
		s, err = board.ParseFEN(strings.Join(setup[1:], " "))
	default:
		return playMoves(NewClassic(opts...), tokens)
	}
	if err != nil {
		return nil, err
	}
	g, err := newManualGame(s, opts...)
	if err != nil {
		return nil, err
	}
	return playMoves(g, moves)
}

// splitMoves separates a manual setup from the moves following "moves".
func splitMoves(tokens []string) (setup, moves []string) {
	for i, tok := range tokens {
		if tok == movesKeyword {
			return tokens[:i], tokens[i+1:]
		}
	}
	return tokens, nil
}

const movesKeyword = "moves"

// AppendMove returns the config text of the game config continued by m.
func AppendMove(config string, m board.Move) string {
	tokens := strings.Fields(config)
	if len(tokens) == 0 {
		return m.String()
	}
	if tokens[0] == "white" || tokens[0] == "black" || tokens[0] == "fen" {
		if _, moves := splitMoves(tokens); moves == nil {
			tokens = append(tokens, movesKeyword)
		}
	}
	return strings.Join(append(tokens, m.String()), " ")
}

// playMoves plays every token in order. Each move must be reachable; a
// move that ends the game stops the whole config.
func playMoves(g *Game, tokens []string) (*Game, error) {
	for i, tok := range tokens {
		m, err := board.ParseMove(tok)
		if err != nil {
			return nil, err
		}
		resolved, ok := g.Resolve(m)
		if !ok {
			return nil, board.MoveError("move %d (%s) is not possible in %s", i+1, tok, g.FEN())
		}
		next, reason := g.Play(resolved)
		if reason != board.Ongoing {
			return nil, board.StoppedError(reason, "move %d (%s) ends the game", i+1, tok)
		}
		g = next
	}
	return g, nil
}

// newManualGame checks what NewManualState cannot: a manual position is
// only playable when the side that just moved is not in check and there is
// still material to mate.
func newManualGame(s board.State, opts ...Option) (*Game, error) {
	b := s.Board()
	waiting := s.Turn().Other()
	if b.IsKingInCheck(s.KingSquare(waiting), waiting) {
		return nil, board.StoppedError(board.KingInCheckAfterMove, "%s is in check but it is %s's turn", waiting, s.Turn())
	}
	if !b.HasSufficientMaterial() {
		return nil, board.StoppedError(board.InsufficientMaterial, "neither side can mate")
	}
	return New(s, opts...), nil
}

// parseDescription parses "<white|black> <symbol><square>... [E<square>]".
func parseDescription(tokens []string) (board.State, error) {
	turn, err := board.ParseColor(tokens[0])
	if err != nil {
		return board.State{}, err
	}

	var b board.Board
	enPassant := board.NoSquare
	for _, tok := range tokens[1:] {
		r, size := utf8.DecodeRuneInString(tok)
		if r == 'E' {
			if enPassant != board.NoSquare {
				return board.State{}, board.ConfigError("more than one en passant target in %q", tok)
			}
			sq, err := board.ParseSquare(tok[size:])
			if err != nil {
				return board.State{}, err
			}
			enPassant = sq
			continue
		}

		f, ok := board.FigureFromSymbol(r)
		if !ok {
			return board.State{}, board.FormatError("unknown figure in token %q", tok)
		}
		sq, err := board.ParseSquare(tok[size:])
		if err != nil {
			return board.State{}, err
		}
		if !b.IsEmpty(sq) {
			return board.State{}, board.ConfigError("square %s is occupied twice", sq)
		}
		b.Put(sq, f)
	}
	return board.NewManualState(b, turn, enPassant)
}

// Describe renders a state in the descriptive config form. Castling
// latches and clocks are not part of it.
func Describe(s board.State) string {
	var sb strings.Builder
	sb.WriteString(s.Turn().String())
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		if f := s.At(sq); f != board.NoFigure {
			sb.WriteByte(' ')
			sb.WriteString(f.Symbol())
			sb.WriteString(sq.String())
		}
	}
	if ep := s.EnPassant(); ep != board.NoSquare {
		sb.WriteString(" E")
		sb.WriteString(ep.String())
	}
	return sb.String()
}

// NormalizeConfig returns the canonical spelling of a config text: tokens
// separated by single spaces.
func NormalizeConfig(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
