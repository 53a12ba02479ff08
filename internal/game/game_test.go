package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/simon-void/voidchess-engine/internal/board"
)

func mustMove(t *testing.T, text string) board.Move {
	t.Helper()
	m, err := board.ParseMove(text)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", text, err)
	}
	return m
}

func mustConfig(t *testing.T, text string) *Game {
	t.Helper()
	g, err := ParseConfig(text)
	if err != nil {
		t.Fatalf("ParseConfig(%q): %v", text, err)
	}
	return g
}

func TestInitialPosition(t *testing.T) {
	g := mustConfig(t, "")
	if n := g.LegalMoves().Len(); n != 20 {
		t.Errorf("LegalMoves = %d, want 20", n)
	}
	if n := g.ReachableMoves().Len(); n != 20 {
		t.Errorf("ReachableMoves = %d, want 20", n)
	}
	if g.Status() != Ongoing || g.InCheck() {
		t.Errorf("Status = %s, InCheck = %v", g.Status(), g.InCheck())
	}
}

func TestThreefoldRepetitionOnNinthHalfMove(t *testing.T) {
	cycle := []string{"b1-c3", "b8-c6", "c3-b1", "c6-b8"}
	var texts []string
	for i := 0; i < 3; i++ {
		texts = append(texts, cycle...)
	}

	g := NewClassic()
	for i, text := range texts {
		next, reason := g.Play(mustMove(t, text))
		if next == nil {
			t.Fatalf("half-move %d (%s) rejected with %s", i+1, text, reason)
		}
		if i < 8 && reason != board.Ongoing {
			t.Fatalf("half-move %d (%s) stopped early: %s", i+1, text, reason)
		}
		if i == 8 {
			if reason != board.ThreeTimesRepetition {
				t.Fatalf("half-move 9 = %s, want ThreeTimesRepetition", reason)
			}
			return
		}
		g = next
	}
	t.Fatal("repetition was never detected")
}

func TestConfigRunningPastGameEnd(t *testing.T) {
	_, err := ParseConfig("b1-c3 b8-c6 c3-b1 c6-b8 b1-c3 b8-c6 c3-b1 c6-b8 b1-c3")
	want := &board.Error{Kind: board.HighLevel, Reason: board.ThreeTimesRepetition}
	if !errors.Is(err, want) {
		t.Fatalf("ParseConfig error = %v, want %v", err, want)
	}

	g, err := ParseConfig("b1-c3 b8-c6 c3-b1 c6-b8 b1-c3 b8-c6 c3-b1 c6-b8")
	if err != nil {
		t.Fatalf("eight half-moves must still be playable: %v", err)
	}
	if g.HalfMoves() != 8 || len(g.Moves()) != 8 {
		t.Errorf("HalfMoves = %d, len(Moves) = %d", g.HalfMoves(), len(g.Moves()))
	}
}

func TestKingInCheckAfterMove(t *testing.T) {
	g := mustConfig(t, "white ♔e1 ♖e2 ♜e8 ♚a8")

	next, reason := g.Play(mustMove(t, "e2-d2"))
	if next != nil || reason != board.KingInCheckAfterMove {
		t.Errorf("Play(e2-d2) = %v, %s; want nil, KingInCheckAfterMove", next, reason)
	}
	if g.LegalMoves().Contains(mustMove(t, "e2-d2")) {
		t.Error("pinned rook must not leave the e-file")
	}

	_, _, err := g.PlayChecked(mustMove(t, "e2-d2"))
	if !errors.Is(err, &board.Error{Kind: board.IllegalMove}) {
		t.Errorf("PlayChecked(e2-d2) error = %v, want IllegalMove", err)
	}
	_, _, err = g.PlayChecked(mustMove(t, "e1-e3"))
	if !errors.Is(err, &board.Error{Kind: board.IllegalMove}) {
		t.Errorf("PlayChecked(e1-e3) error = %v, want IllegalMove", err)
	}

	next, reason, err = g.PlayChecked(mustMove(t, "e2-e8"))
	if err != nil || reason != board.Ongoing {
		t.Fatalf("PlayChecked(e2-e8) = %s, %v", reason, err)
	}
	if !next.LastTransition().IsCapture() {
		t.Error("e2-e8 should capture the rook")
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		config string
		want   *board.Error
	}{
		{"white ♔e1 ♔e2 ♚e8", &board.Error{Kind: board.IllegalConfig}},
		{"white ♔e1 ♚e8 ♙e8", &board.Error{Kind: board.IllegalConfig}},
		{"white ♔e1 ♚e8 ♙a8 ♖h1", &board.Error{Kind: board.IllegalConfig}},
		{"white ♔e1 ♚e8 ♙e4 Ee3", &board.Error{Kind: board.IllegalConfig}},
		{"white ♔e1 ♚e8", &board.Error{Kind: board.HighLevel, Reason: board.InsufficientMaterial}},
		{"black ♔e1 ♜e2 ♚a8 ♙a2", &board.Error{Kind: board.HighLevel, Reason: board.KingInCheckAfterMove}},
		{"white ♔x1 ♚e8", &board.Error{Kind: board.IllegalFormat}},
		{"white Ke1 ♚e8", &board.Error{Kind: board.IllegalFormat}},
		{"purple ♔e1 ♚e8", &board.Error{Kind: board.IllegalFormat}},
		{"e2-e4 e7e5", &board.Error{Kind: board.IllegalFormat}},
		{"e2-e5", &board.Error{Kind: board.IllegalMove}},
		{"fen 8/8/8/8/8/8/8/8 w - - 0 1", &board.Error{Kind: board.IllegalConfig}},
	}
	for _, tc := range tests {
		t.Run(tc.config, func(t *testing.T) {
			_, err := ParseConfig(tc.config)
			if !errors.Is(err, tc.want) {
				t.Errorf("ParseConfig error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestManualEnPassant(t *testing.T) {
	g := mustConfig(t, "white ♔e1 ♚e8 ♟d5 ♙e5 Ed6")
	m := mustMove(t, "e5ed6")
	if !g.LegalMoves().Contains(m) {
		t.Fatalf("e5ed6 missing from %v", g.LegalMoves().Slice())
	}

	// Without the target the capture is gone.
	g = mustConfig(t, "white ♔e1 ♚e8 ♟d5 ♙e5")
	if g.LegalMoves().Contains(m) {
		t.Error("e5ed6 must need an en passant target")
	}
}

func TestStatus(t *testing.T) {
	g := mustConfig(t, "black ♔b6 ♙a7 ♚a8")
	if g.Status() != Stalemate {
		t.Errorf("Status = %s, want stalemate", g.Status())
	}

	g = mustConfig(t, "white ♔g3 ♖d2 ♚g1 ♙c2 ♙d3")
	next, reason := g.Play(mustMove(t, "d2-d1"))
	if next == nil || reason != board.Ongoing {
		t.Fatalf("Play(d2-d1) = %v, %s", next, reason)
	}
	if !next.InCheck() || !next.IsCheckmate() || next.Status() != Checkmate {
		t.Errorf("after d2-d1: InCheck=%v IsCheckmate=%v Status=%s", next.InCheck(), next.IsCheckmate(), next.Status())
	}
}

func TestInsufficientMaterialAfterCapture(t *testing.T) {
	g := mustConfig(t, "white ♔a1 ♘b1 ♚h8 ♜d2")
	next, reason := g.Play(mustMove(t, "b1-d2"))
	if reason != board.InsufficientMaterial {
		t.Fatalf("reason = %s, want InsufficientMaterial", reason)
	}
	if next == nil {
		t.Fatal("a drawn game must still be returned")
	}
}

func TestResolve(t *testing.T) {
	g := mustConfig(t, "white ♔e1 ♖h1 ♚e8")
	got, ok := g.Resolve(mustMove(t, "e1-g1"))
	if !ok || got != board.NewCastling(board.E1, board.G1, board.KingSide) {
		t.Errorf("Resolve(e1-g1) = %s, %v", got, ok)
	}

	g = mustConfig(t, "white ♔e1 ♚e8 ♙b7")
	for _, text := range []string{"b7Qb8", "b7Rb8", "b7Bb8", "b7Kb8"} {
		if _, ok := g.Resolve(mustMove(t, text)); !ok {
			t.Errorf("Resolve(%s) failed", text)
		}
	}
	if _, ok := g.Resolve(mustMove(t, "b7-b8")); ok {
		t.Error("a promotion needs its piece")
	}
}

func TestDescribe(t *testing.T) {
	for _, config := range []string{
		"black ♔b6 ♙a7 ♚a8",
		"white ♔e1 ♙e5 ♟d5 ♚e8 Ed6",
	} {
		g := mustConfig(t, config)
		got := Describe(g.State())
		back := mustConfig(t, got)
		if back.FEN() != g.FEN() {
			t.Errorf("Describe(%q) = %q does not parse back", config, got)
		}
	}
	if got := Describe(mustConfig(t, "black ♔b6 ♙a7 ♚a8").State()); got != "black ♔b6 ♙a7 ♚a8" {
		t.Errorf("Describe = %q", got)
	}
}

func TestMovesSAN(t *testing.T) {
	g := mustConfig(t, "e2-e4 e7-e5 g1-f3 b8-c6 f1-b5")
	got := strings.Join(g.MovesSAN(), " ")
	if got != "e4 e5 Nf3 Nc6 Bb5" {
		t.Errorf("MovesSAN = %q", got)
	}
}

func TestBoardStatesFiftyMoves(t *testing.T) {
	var bs BoardStates
	var reason board.StopReason
	for i := 0; i < fiftyMoveEntries; i++ {
		bs, reason = bs.Record(board.Fingerprint{uint64(i), 1}, board.White, false)
		if reason != board.Ongoing {
			t.Fatalf("white record %d: %s", i, reason)
		}
		bs, reason = bs.Record(board.Fingerprint{uint64(i), 2}, board.Black, false)
		if i < fiftyMoveEntries-1 && reason != board.Ongoing {
			t.Fatalf("black record %d: %s", i, reason)
		}
	}
	if reason != board.NoChangeIn50Moves {
		t.Errorf("reason = %s, want NoChangeIn50Moves", reason)
	}

	bs, _ = bs.Record(board.Fingerprint{99}, board.White, true)
	if bs.Len(board.White) != 1 || bs.Len(board.Black) != 0 {
		t.Errorf("after irreversible move: %d/%d entries", bs.Len(board.White), bs.Len(board.Black))
	}
}

func TestBoardStatesBranchesDoNotShare(t *testing.T) {
	var base BoardStates
	for i := 0; i < 4; i++ {
		base, _ = base.Record(board.Fingerprint{uint64(i)}, board.White, false)
	}
	a, _ := base.Record(board.Fingerprint{100}, board.White, false)
	b, _ := base.Record(board.Fingerprint{200}, board.White, false)
	if a.byMover[board.White][4] != (board.Fingerprint{100}) {
		t.Error("sibling branch overwrote the history")
	}
	if b.byMover[board.White][4] != (board.Fingerprint{200}) || base.Len(board.White) != 4 {
		t.Error("recording changed the parent")
	}
}

func TestManualConfigWithMoves(t *testing.T) {
	config := "white ♔e1 ♖h1 ♚e8"
	g := mustConfig(t, config)

	config = AppendMove(config, mustMove(t, "e1cg1"))
	if config != "white ♔e1 ♖h1 ♚e8 moves e1cg1" {
		t.Fatalf("AppendMove = %q", config)
	}
	config = AppendMove(config, mustMove(t, "e8-d7"))
	next := mustConfig(t, config)
	if next.HalfMoves() != 2 || next.Turn() != g.Turn() {
		t.Errorf("HalfMoves = %d, Turn = %s", next.HalfMoves(), next.Turn())
	}
	if next.State().At(board.F1) != board.NewFigure(board.Rook, board.White) {
		t.Error("castling rook missing on f1")
	}

	fen := mustConfig(t, "fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1 moves e1cg1")
	if fen.State().KingSquare(board.White) != board.G1 {
		t.Errorf("white king on %s, want g1", fen.State().KingSquare(board.White))
	}

	if got := AppendMove("", mustMove(t, "e2-e4")); got != "e2-e4" {
		t.Errorf("AppendMove on the start = %q", got)
	}
}
