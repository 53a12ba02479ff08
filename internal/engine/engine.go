package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/game"
)

// Options configures an Engine.
type Options struct {
	Policy          Policy
	StopProbability float64 // chance to settle at each step of the choice
	MaxGap          float64 // largest numeric loss accepted for variety
	Seed            uint64
	FullPromotions  bool // search rook and bishop promotions too
}

// DefaultOptions returns the default policy and chooser settings.
func DefaultOptions() Options {
	return Options{
		Policy:          DefaultPolicy,
		StopProbability: 0.7,
		MaxGap:          0.2,
		Seed:            1,
	}
}

// Cache stores ranked root evaluations between calls.
type Cache interface {
	Get(key string) ([]Ranked, bool, error)
	Put(key string, ranked []Ranked) error
}

// MoveInfo reports the evaluation of one root move.
type MoveInfo struct {
	Move       board.Move
	Evaluation Evaluation
	Nodes      uint64
	Time       time.Duration
	Index      int // 1-based
	Total      int
}

// Result is the outcome of Evaluate. When Ended is set the side to move
// has no legal move and Status tells checkmate from stalemate.
type Result struct {
	Ended      bool
	Status     game.Status
	Move       board.Move
	Evaluation Evaluation
	Ranked     []Ranked
	Nodes      uint64
	Cached     bool
}

// PlayResult is the outcome of Play.
type PlayResult struct {
	Config string
	FEN    string
	Status game.Status
	Reason board.StopReason // set when the move ended the game by a draw
}

// Engine answers the collaborator operations on game config texts.
type Engine struct {
	opts   Options
	logger zerolog.Logger
	cache  Cache

	mu      sync.Mutex
	chooser *Chooser

	// OnMoveEvaluated is called after each root move of Evaluate.
	OnMoveEvaluated func(MoveInfo)
}

// New creates an engine. Invalid options fall back to DefaultOptions.
func New(opts Options, logger zerolog.Logger) *Engine {
	if err := opts.Policy.Validate(); err != nil {
		logger.Warn().Err(err).Msg("invalid search policy, using default")
		opts.Policy = DefaultPolicy
	}
	if opts.StopProbability <= 0 || opts.StopProbability > 1 {
		opts.StopProbability = DefaultOptions().StopProbability
	}
	if opts.MaxGap < 0 {
		opts.MaxGap = DefaultOptions().MaxGap
	}
	return &Engine{
		opts:    opts,
		logger:  logger,
		chooser: NewChooser(opts.StopProbability, opts.MaxGap, opts.Seed),
	}
}

// SetCache sets the cache consulted by Evaluate. A nil cache disables it.
func (e *Engine) SetCache(c Cache) {
	e.cache = c
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) gameOptions() []game.Option {
	if e.opts.FullPromotions {
		return []game.Option{game.WithPromotions(board.AllPromotions)}
	}
	return nil
}

func (e *Engine) cacheKey(config string) string {
	promotions := "qn"
	if e.opts.FullPromotions {
		promotions = "all"
	}
	return game.NormalizeConfig(config) + "|" + e.opts.Policy.String() + "|" + promotions
}

// Evaluate ranks every legal move of the position described by config and
// picks one to play. The context is checked between root moves.
func (e *Engine) Evaluate(ctx context.Context, config string) (Result, error) {
	return e.EvaluateStream(ctx, config, e.OnMoveEvaluated)
}

// EvaluateStream is Evaluate with a per-call progress callback, which may
// be nil.
func (e *Engine) EvaluateStream(ctx context.Context, config string, onMove func(MoveInfo)) (Result, error) {
	g, err := game.ParseConfig(config, e.gameOptions()...)
	if err != nil {
		return Result{}, fmt.Errorf("parse config: %w", err)
	}

	key := e.cacheKey(config)
	if e.cache != nil {
		ranked, ok, err := e.cache.Get(key)
		if err != nil {
			e.logger.Warn().Err(err).Str("config", key).Msg("cache lookup failed")
		} else if ok && len(ranked) > 0 {
			return e.choose(ranked, 0, true), nil
		}
	}

	roots := e.rootMoves(g)
	if len(roots) == 0 {
		return Result{Ended: true, Status: g.Status()}, nil
	}

	start := time.Now()
	searcher := NewSearcher(e.opts.Policy, g.Turn())
	ranked := make([]Ranked, 0, len(roots))
	for i, m := range roots {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		before := searcher.Nodes()
		moveStart := time.Now()
		eval := searcher.EvaluateMove(g, m)
		ranked = append(ranked, Ranked{Move: m, Evaluation: eval})
		if onMove != nil {
			onMove(MoveInfo{
				Move:       m,
				Evaluation: eval,
				Nodes:      searcher.Nodes() - before,
				Time:       time.Since(moveStart),
				Index:      i + 1,
				Total:      len(roots),
			})
		}
	}
	SortRanked(ranked)

	e.logger.Debug().
		Str("fen", g.FEN()).
		Int("moves", len(ranked)).
		Uint64("nodes", searcher.Nodes()).
		Dur("elapsed", time.Since(start)).
		Str("best", ranked[0].Move.String()).
		Stringer("evaluation", ranked[0].Evaluation).
		Msg("position evaluated")

	if e.cache != nil {
		if err := e.cache.Put(key, ranked); err != nil {
			e.logger.Warn().Err(err).Str("config", key).Msg("cache store failed")
		}
	}
	return e.choose(ranked, searcher.Nodes(), false), nil
}

func (e *Engine) choose(ranked []Ranked, nodes uint64, cached bool) Result {
	e.mu.Lock()
	i := e.chooser.Choose(ranked)
	e.mu.Unlock()
	return Result{
		Move:       ranked[i].Move,
		Evaluation: ranked[i].Evaluation,
		Ranked:     ranked,
		Nodes:      nodes,
		Cached:     cached,
	}
}

// rootMoves returns the reachable moves that keep the own king safe.
func (e *Engine) rootMoves(g *game.Game) []board.Move {
	st := g.State()
	reachable := g.ReachableMoves()
	roots := make([]board.Move, 0, reachable.Len())
	for i := 0; i < reachable.Len(); i++ {
		if m := reachable.Get(i); st.IsLegal(m) {
			roots = append(roots, m)
		}
	}
	return roots
}

// EvaluateMove evaluates a single move of the position described by config.
func (e *Engine) EvaluateMove(ctx context.Context, config, move string) (Evaluation, error) {
	g, err := game.ParseConfig(config, e.gameOptions()...)
	if err != nil {
		return Evaluation{}, fmt.Errorf("parse config: %w", err)
	}
	m, err := e.resolve(g, move)
	if err != nil {
		return Evaluation{}, err
	}
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	start := time.Now()
	searcher := NewSearcher(e.opts.Policy, g.Turn())
	eval := searcher.EvaluateMove(g, m)
	e.logger.Debug().
		Str("fen", g.FEN()).
		Str("move", m.String()).
		Uint64("nodes", searcher.Nodes()).
		Dur("elapsed", time.Since(start)).
		Stringer("evaluation", eval).
		Msg("move evaluated")
	return eval, nil
}

// resolve parses move and checks that it is legal in g.
func (e *Engine) resolve(g *game.Game, move string) (board.Move, error) {
	m, err := board.ParseMove(move)
	if err != nil {
		return board.NoMove, err
	}
	resolved, ok := g.Resolve(m)
	if !ok {
		return board.NoMove, board.MoveError("%s is not a possible move in %s", move, g.FEN())
	}
	if st := g.State(); !st.IsLegal(resolved) {
		return board.NoMove, board.MoveError("%s leaves the %s king in check", move, g.Turn())
	}
	return resolved, nil
}

// AllowedMoves lists the legal moves of the position described by config,
// with every promotion piece.
func (e *Engine) AllowedMoves(config string) ([]board.Move, error) {
	g, err := game.ParseConfig(config, e.gameOptions()...)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return g.LegalMoves().Slice(), nil
}

// Play applies move to the position described by config. A move that
// draws the game is reported through Reason; the returned Config is then
// the unchanged input, since a config cannot run past the end of a game.
func (e *Engine) Play(config, move string) (PlayResult, error) {
	g, err := game.ParseConfig(config, e.gameOptions()...)
	if err != nil {
		return PlayResult{}, fmt.Errorf("parse config: %w", err)
	}
	m, err := board.ParseMove(move)
	if err != nil {
		return PlayResult{}, err
	}
	next, reason, err := g.PlayChecked(m)
	if err != nil {
		return PlayResult{}, err
	}
	if resolved, ok := g.Resolve(m); ok {
		m = resolved
	}
	res := PlayResult{
		Config: config,
		FEN:    next.FEN(),
		Reason: reason,
	}
	if reason == board.Ongoing {
		res.Config = game.AppendMove(config, m)
		res.Status = next.Status()
	}
	return res, nil
}
