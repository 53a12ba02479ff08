package engine

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/game"
)

func newTestEngine() *Engine {
	opts := DefaultOptions()
	opts.Policy = QuickPolicy
	return New(opts, zerolog.Nop())
}

func mustMove(t *testing.T, text string) board.Move {
	t.Helper()
	m, err := board.ParseMove(text)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", text, err)
	}
	return m
}

const mateInOne = "white ♔g3 ♖d2 ♚g1 ♙c2 ♙d3"

func TestEvaluateFindsMate(t *testing.T) {
	eng := newTestEngine()
	res, err := eng.Evaluate(context.Background(), mateInOne)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Ended {
		t.Fatalf("game reported as ended")
	}
	if want := mustMove(t, "d2-d1"); res.Move != want {
		t.Errorf("Move = %s, want %s", res.Move, want)
	}
	if res.Evaluation != WinIn(0) {
		t.Errorf("Evaluation = %s, want win in 0", res.Evaluation)
	}
	if res.Ranked[0].Move != res.Move {
		t.Errorf("chosen move %s is not the top ranked %s", res.Move, res.Ranked[0].Move)
	}
	for i := 1; i < len(res.Ranked); i++ {
		if Compare(res.Ranked[i-1].Evaluation, res.Ranked[i].Evaluation) < 0 {
			t.Errorf("ranked[%d] %s < ranked[%d] %s", i-1, res.Ranked[i-1].Evaluation, i, res.Ranked[i].Evaluation)
		}
	}
	if res.Nodes == 0 {
		t.Errorf("Nodes = 0")
	}
	t.Logf("nodes: %d", res.Nodes)
}

func TestEvaluateMoveMateInZero(t *testing.T) {
	eng := newTestEngine()
	eval, err := eng.EvaluateMove(context.Background(), mateInOne, "d2-d1")
	if err != nil {
		t.Fatalf("EvaluateMove: %v", err)
	}
	if eval != WinIn(0) {
		t.Errorf("d2-d1 = %s, want win in 0", eval)
	}
}

func TestEvaluateMoveStalemate(t *testing.T) {
	eng := newTestEngine()
	eval, err := eng.EvaluateMove(context.Background(), "white ♔b6 ♕c5 ♚a8", "c5-c7")
	if err != nil {
		t.Fatalf("EvaluateMove: %v", err)
	}
	if eval != Drawn(Stalemate) {
		t.Errorf("c5-c7 = %s, want draw (stalemate)", eval)
	}
}

// Every white figure is blocked: white has no move, legal or not.
const jammedWhite = "♔h1 ♖g1 ♗f1 ♗g2 ♙h2 ♙h3 ♙f3 ♙e2 ♟h4 ♟f4 ♟e3 ♚a8"

func TestNoReplies(t *testing.T) {
	eng := newTestEngine()
	eval, err := eng.EvaluateMove(context.Background(), "black "+jammedWhite, "a8-b8")
	if err != nil {
		t.Fatalf("EvaluateMove: %v", err)
	}
	if eval != Drawn(Stalemate) {
		t.Errorf("a8-b8 = %s, want draw (stalemate)", eval)
	}

	res, err := eng.Evaluate(context.Background(), "white "+jammedWhite)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Ended || res.Status != game.Stalemate {
		t.Errorf("Evaluate = ended %v, status %s; want ended stalemate", res.Ended, res.Status)
	}

	tests := []struct {
		name   string
		config string
		color  board.Color
		want   func(st *board.State) Evaluation
	}{
		{"stalemate", "white " + jammedWhite, board.White,
			func(*board.State) Evaluation { return Drawn(Stalemate) }},
		{"mated", "white " + jammedWhite + " ♞f2", board.White,
			func(st *board.State) Evaluation { return LoseIn(3, materialBalance(st, board.White)) }},
		{"mating", "white " + jammedWhite + " ♞f2", board.Black,
			func(*board.State) Evaluation { return WinIn(3) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := game.ParseConfig(tc.config)
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if n := g.ReachableMoves().Len(); n != 0 {
				t.Fatalf("%d reachable moves, want none", n)
			}
			st := g.State()
			if got, want := NewSearcher(QuickPolicy, tc.color).noReplies(g, 3), tc.want(&st); got != want {
				t.Errorf("noReplies = %s, want %s", got, want)
			}
		})
	}
}

func TestEvaluateMoveErrors(t *testing.T) {
	eng := newTestEngine()
	tests := []struct {
		name   string
		config string
		move   string
		kind   board.ErrorKind
	}{
		{"bad config", "white ♔e1", "e1-e2", board.IllegalConfig},
		{"bad move text", "", "e2e4", board.IllegalFormat},
		{"unreachable", "", "e2-e5", board.IllegalMove},
		{"into check", "white ♔e1 ♖e2 ♜e8 ♚a8", "e2-d2", board.IllegalMove},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.EvaluateMove(context.Background(), tc.config, tc.move)
			if !errors.Is(err, &board.Error{Kind: tc.kind}) {
				t.Errorf("err = %v, want kind %s", err, tc.kind)
			}
		})
	}
}

func TestEvaluateEndedGame(t *testing.T) {
	eng := newTestEngine()
	res, err := eng.Evaluate(context.Background(), "black ♔b6 ♙a7 ♚a8")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Ended || res.Status != game.Stalemate {
		t.Errorf("Ended = %v, Status = %s, want stalemate", res.Ended, res.Status)
	}
}

func TestEvaluateCanceled(t *testing.T) {
	eng := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Evaluate(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEvaluateReportsEveryRootMove(t *testing.T) {
	eng := newTestEngine()
	var infos []MoveInfo
	res, err := eng.EvaluateStream(context.Background(), mateInOne, func(info MoveInfo) {
		infos = append(infos, info)
	})
	if err != nil {
		t.Fatalf("EvaluateStream: %v", err)
	}
	if len(infos) != len(res.Ranked) {
		t.Fatalf("callback ran %d times, want %d", len(infos), len(res.Ranked))
	}
	var nodes uint64
	for i, info := range infos {
		if info.Index != i+1 || info.Total != len(infos) {
			t.Errorf("info %d: Index = %d, Total = %d", i, info.Index, info.Total)
		}
		nodes += info.Nodes
	}
	if nodes != res.Nodes {
		t.Errorf("sum of nodes = %d, want %d", nodes, res.Nodes)
	}
}

type mapCache struct {
	data map[string][]Ranked
	puts int
}

func (c *mapCache) Get(key string) ([]Ranked, bool, error) {
	r, ok := c.data[key]
	return r, ok, nil
}

func (c *mapCache) Put(key string, ranked []Ranked) error {
	c.data[key] = ranked
	c.puts++
	return nil
}

func TestEvaluateUsesCache(t *testing.T) {
	eng := newTestEngine()
	cache := &mapCache{data: map[string][]Ranked{}}
	eng.SetCache(cache)

	first, err := eng.Evaluate(context.Background(), mateInOne)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := eng.Evaluate(context.Background(), "  "+mateInOne+" ")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v, %v, want false, true", first.Cached, second.Cached)
	}
	if cache.puts != 1 {
		t.Errorf("puts = %d, want 1", cache.puts)
	}
	if second.Move != first.Move || second.Evaluation != first.Evaluation {
		t.Errorf("cached result %s %s, want %s %s", second.Move, second.Evaluation, first.Move, first.Evaluation)
	}
}

func TestAllowedMoves(t *testing.T) {
	eng := newTestEngine()
	moves, err := eng.AllowedMoves("")
	if err != nil {
		t.Fatalf("AllowedMoves: %v", err)
	}
	if len(moves) != 20 {
		t.Errorf("AllowedMoves = %d, want 20", len(moves))
	}

	// every promotion piece is listed
	moves, err = eng.AllowedMoves("white ♔e1 ♙b7 ♚h8")
	if err != nil {
		t.Fatalf("AllowedMoves: %v", err)
	}
	promotions := 0
	for _, m := range moves {
		if m.IsPromotion() {
			promotions++
		}
	}
	if promotions != 4 {
		t.Errorf("promotions = %d, want 4", promotions)
	}
}

func TestPlay(t *testing.T) {
	eng := newTestEngine()

	res, err := eng.Play("", "e2-e4")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Config != "e2-e4" {
		t.Errorf("Config = %q", res.Config)
	}
	if want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; res.FEN != want {
		t.Errorf("FEN = %q, want %q", res.FEN, want)
	}

	res, err = eng.Play(mateInOne, "d2-d1")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Status != game.Checkmate {
		t.Errorf("Status = %s, want checkmate", res.Status)
	}
	if res.Config != mateInOne+" moves d2-d1" {
		t.Errorf("Config = %q", res.Config)
	}

	shuffle := "b1-c3 b8-c6 c3-b1 c6-b8 b1-c3 b8-c6 c3-b1 c6-b8"
	res, err = eng.Play(shuffle, "b1-c3")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Reason != board.ThreeTimesRepetition {
		t.Errorf("Reason = %s, want ThreeTimesRepetition", res.Reason)
	}
	if res.Config != shuffle {
		t.Errorf("Config after a draw = %q, want the unchanged %q", res.Config, shuffle)
	}
	if _, err := game.ParseConfig(res.Config); err != nil {
		t.Errorf("config after a draw does not parse: %v", err)
	}

	if _, err := eng.Play("", "e2-e5"); !errors.Is(err, &board.Error{Kind: board.IllegalMove}) {
		t.Errorf("e2-e5: err = %v, want IllegalMove", err)
	}
}

func TestEvaluationOrder(t *testing.T) {
	canonical := []Evaluation{
		LoseIn(1, 0),
		LoseIn(3, -2),
		LoseIn(3, 1),
		Numeric(-2.5),
		Numeric(-0.1),
		Drawn(Stalemate),
		Drawn(InsufficientMaterial),
		Drawn(ThreeTimesRepetition),
		Drawn(NoChangeIn50Moves),
		Numeric(0),
		Numeric(0.3),
		Numeric(4),
		WinIn(5),
		WinIn(2),
		WinIn(0),
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 20; round++ {
		shuffled := make([]Evaluation, len(canonical))
		copy(shuffled, canonical)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		sort.Slice(shuffled, func(i, j int) bool {
			return Compare(shuffled[i], shuffled[j]) < 0
		})
		for i := range canonical {
			if shuffled[i] != canonical[i] {
				t.Fatalf("round %d: position %d = %s, want %s", round, i, shuffled[i], canonical[i])
			}
		}
	}

	for i, a := range canonical {
		for j, b := range canonical {
			if got, want := Compare(a, b), cmpInt(i, j); got != want {
				t.Errorf("Compare(%s, %s) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestEvaluationString(t *testing.T) {
	tests := []struct {
		eval Evaluation
		want string
	}{
		{WinIn(0), "win in 0"},
		{LoseIn(3, -1), "lose in 3"},
		{Drawn(ThreeTimesRepetition), "draw (threeTimesRepetition)"},
		{Numeric(0.354), "+0.35"},
		{Numeric(-1.5), "-1.50"},
	}
	for _, tc := range tests {
		if got := tc.eval.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestChooser(t *testing.T) {
	ranked := func(evals ...Evaluation) []Ranked {
		out := make([]Ranked, len(evals))
		for i, e := range evals {
			out[i] = Ranked{Move: board.NewMove(board.Square(i), board.Square(i+8)), Evaluation: e}
		}
		return out
	}

	tests := []struct {
		name   string
		stop   float64
		ranked []Ranked
		want   int
	}{
		{"always stops", 1, ranked(Numeric(1), Numeric(1), Numeric(1)), 0},
		{"win is kept", 0, ranked(WinIn(3), WinIn(5), Numeric(2)), 0},
		{"loss is kept", 0, ranked(LoseIn(4, 0), LoseIn(2, 0)), 0},
		{"stops at gap", 0, ranked(Numeric(1), Numeric(0.9), Numeric(0.85), Numeric(0.5)), 2},
		{"draw counts as zero", 0, ranked(Numeric(0.1), Drawn(Stalemate), Numeric(-0.05), LoseIn(2, 0)), 2},
		{"single move", 0, ranked(Numeric(0)), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChooser(tc.stop, 0.2, 42)
			if got := c.Choose(tc.ranked); got != tc.want {
				t.Errorf("Choose = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestChooserStaysWithinGap(t *testing.T) {
	ranked := []Ranked{
		{Move: 1, Evaluation: Numeric(0.5)},
		{Move: 2, Evaluation: Numeric(0.45)},
		{Move: 3, Evaluation: Numeric(0.4)},
		{Move: 4, Evaluation: Numeric(0.2)},
	}
	c := NewChooser(0.7, 0.2, 3)
	seen := map[int]int{}
	for i := 0; i < 1000; i++ {
		seen[c.Choose(ranked)]++
	}
	if seen[3] != 0 {
		t.Errorf("chose the move outside the gap %d times", seen[3])
	}
	if seen[0] < 600 {
		t.Errorf("best move chosen %d/1000 times, want about 700", seen[0])
	}
	t.Logf("choices: %v", seen)
}

func TestPolicy(t *testing.T) {
	for _, name := range []string{"quick", "default", "thorough"} {
		p, ok := PolicyByName(name)
		if !ok {
			t.Fatalf("PolicyByName(%q) not found", name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, ok := PolicyByName("blitz"); ok {
		t.Errorf("PolicyByName(blitz) found")
	}

	bad := []Policy{
		{Base: -1, PawnMoved: 1, Capture: 2, Limit: 3},
		{Base: 3, PawnMoved: 2, Capture: 4, Limit: 5},
		{Base: 1, PawnMoved: 2, Capture: 6, Limit: 5},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%s) = nil", p)
		}
	}
}

func TestPolicyExtendsChecks(t *testing.T) {
	g, err := game.ParseConfig(mateInOne)
	if err != nil {
		t.Fatal(err)
	}
	next, _ := g.Play(mustMove(t, "d2-d1"))
	if QuickPolicy.shouldStop(3, g, next) {
		t.Errorf("stopped while in check")
	}
	if !QuickPolicy.shouldStop(QuickPolicy.Limit, g, next) {
		t.Errorf("did not stop at the limit")
	}
	quiet, _ := g.Play(mustMove(t, "g3-h3"))
	if !QuickPolicy.shouldStop(QuickPolicy.Base, g, quiet) {
		t.Errorf("did not stop at base depth in a quiet position")
	}
}

func TestStaticEvalSymmetry(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/3PP3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		s, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		white := StaticEval(&s, board.White)
		if black := StaticEval(&s, board.Black); math.Abs(white+black) > 1e-9 {
			t.Errorf("%s: white %f, black %f", fen, white, black)
		}
		m := s.Mirror()
		if mirrored := StaticEval(&m, board.Black); math.Abs(white-mirrored) > 1e-9 {
			t.Errorf("%s: white %f, mirrored black %f", fen, white, mirrored)
		}
	}

	s := board.NewClassicState()
	if v := StaticEval(&s, board.White); math.Abs(v) > 1e-9 {
		t.Errorf("start position = %f, want 0", v)
	}
}

func TestPawnValue(t *testing.T) {
	s, err := board.ParseFEN("4k3/8/8/8/3P4/2P5/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	b := s.Board()
	// c3: one row advanced; d4: two rows and covered by c3.
	want := 2*PawnValue + 3*pawnAdvanceBonus + pawnProtectedBonus
	if got := material(&b); math.Abs(got-want) > 1e-9 {
		t.Errorf("material = %f, want %f", got, want)
	}
}

func TestScrambledVisitsEveryMove(t *testing.T) {
	for n := 0; n <= 100; n++ {
		ml := board.NewMoveList()
		for i := 0; i < n; i++ {
			ml.Add(board.NewMove(board.Square(i%64), board.Square(i/64)))
		}
		seen := make(map[board.Move]bool, n)
		scrambled(ml, func(m board.Move) bool {
			seen[m] = true
			return false
		})
		if len(seen) != n {
			t.Errorf("n = %d: visited %d distinct moves", n, len(seen))
		}
	}
}
