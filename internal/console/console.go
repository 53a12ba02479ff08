// Package console implements the line protocol of the voidchess binary:
// one command per line on the input, answers on the output.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/engine"
	"github.com/simon-void/voidchess-engine/internal/game"
	"github.com/simon-void/voidchess-engine/internal/render"
)

// Console holds the current game and answers commands about it.
type Console struct {
	engine *engine.Engine
	render render.Options
	logger zerolog.Logger

	config string // game config text of the current position
	out    io.Writer
}

// New creates a console starting from the classical position.
func New(eng *engine.Engine, renderOpts render.Options, logger zerolog.Logger) *Console {
	return &Console{
		engine: eng,
		render: renderOpts,
		logger: logger,
	}
}

// Config returns the game config of the current position.
func (c *Console) Config() string {
	return c.config
}

// Run reads commands until "quit", the end of in or the context is done.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.out = out
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "position":
			err = c.handlePosition(args)
		case "moves":
			err = c.handleMoves()
		case "play":
			err = c.handlePlay(args)
		case "go":
			err = c.handleGo(ctx, args)
		case "eval":
			err = c.handleEval(ctx, args)
		case "fen":
			err = c.handleFEN()
		case "d":
			err = c.handleDisplay()
		case "diagram":
			err = c.handleDiagram(args)
		case "perft":
			err = c.handlePerft(args)
		case "help":
			c.handleHelp()
		case "quit":
			return nil
		default:
			err = fmt.Errorf("unknown command %q, try help", cmd)
		}
		if err != nil {
			c.logger.Debug().Err(err).Str("command", line).Msg("command failed")
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (c *Console) game() (*game.Game, error) {
	return game.ParseConfig(c.config)
}

// handlePosition sets the current position.
// Formats:
//   - position startpos [moves e2-e4 e7-e5]
//   - position fen <fen> [moves e2-e4]
//   - position white ♔e1 ♚e8 ♙e2 [moves e2-e4]
//   - position e2-e4 e7-e5
func (c *Console) handlePosition(args []string) error {
	if len(args) > 0 && args[0] == "startpos" {
		args = args[1:]
		if len(args) > 0 && args[0] == "moves" {
			args = args[1:]
		}
	}
	config := strings.Join(args, " ")
	if _, err := game.ParseConfig(config); err != nil {
		return err
	}
	c.config = config
	return nil
}

// handleMoves lists the legal moves with their SAN.
func (c *Console) handleMoves() error {
	g, err := c.game()
	if err != nil {
		return err
	}
	moves, err := c.engine.AllowedMoves(c.config)
	if err != nil {
		return err
	}
	st := g.State()
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = fmt.Sprintf("%s(%s)", m, st.SAN(m))
	}
	fmt.Fprintf(c.out, "moves %d %s\n", len(moves), strings.Join(parts, " "))
	return nil
}

// handlePlay applies a move given as move text or SAN.
func (c *Console) handlePlay(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: play <move>")
	}
	move, err := c.moveText(args[0])
	if err != nil {
		return err
	}
	res, err := c.engine.Play(c.config, move)
	if err != nil {
		return err
	}
	c.reportPlay(move, res)
	return nil
}

// moveText accepts both "g1-f3" and "Nf3".
func (c *Console) moveText(text string) (string, error) {
	if _, err := board.ParseMove(text); err == nil {
		return text, nil
	}
	g, err := c.game()
	if err != nil {
		return "", err
	}
	st := g.State()
	m, err := st.ParseSAN(text)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func (c *Console) reportPlay(move string, res engine.PlayResult) {
	switch {
	case res.Reason != board.Ongoing:
		fmt.Fprintf(c.out, "played %s fen %s gameover %s\n", move, res.FEN, res.Reason)
		c.config = ""
	case res.Status != game.Ongoing:
		fmt.Fprintf(c.out, "played %s fen %s gameover %s\n", move, res.FEN, res.Status)
		c.config = res.Config
	default:
		fmt.Fprintf(c.out, "played %s fen %s\n", move, res.FEN)
		c.config = res.Config
	}
}

// handleGo evaluates the position and prints one info line per move.
// "go play" also plays the chosen move.
func (c *Console) handleGo(ctx context.Context, args []string) error {
	play := len(args) > 0 && args[0] == "play"

	start := time.Now()
	res, err := c.engine.EvaluateStream(ctx, c.config, func(info engine.MoveInfo) {
		fmt.Fprintf(c.out, "info move %s eval %s nodes %d time %d progress %d/%d\n",
			info.Move, info.Evaluation, info.Nodes, info.Time.Milliseconds(), info.Index, info.Total)
	})
	if err != nil {
		return err
	}
	if res.Ended {
		fmt.Fprintf(c.out, "gameover %s\n", res.Status)
		return nil
	}
	fmt.Fprintf(c.out, "bestmove %s eval %s nodes %d time %d\n",
		res.Move, res.Evaluation, res.Nodes, time.Since(start).Milliseconds())

	if play {
		move := res.Move.String()
		pr, err := c.engine.Play(c.config, move)
		if err != nil {
			return err
		}
		c.reportPlay(move, pr)
	}
	return nil
}

// handleEval evaluates a single move.
func (c *Console) handleEval(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: eval <move>")
	}
	move, err := c.moveText(args[0])
	if err != nil {
		return err
	}
	eval, err := c.engine.EvaluateMove(ctx, c.config, move)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "eval %s %s\n", move, eval)
	return nil
}

func (c *Console) handleFEN() error {
	g, err := c.game()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, g.FEN())
	return nil
}

// handleDisplay prints the board, the game description and the moves so far.
func (c *Console) handleDisplay() error {
	g, err := c.game()
	if err != nil {
		return err
	}
	st := g.State()
	fmt.Fprint(c.out, st.String())
	fmt.Fprintf(c.out, "Description: %s\n", game.Describe(st))
	if san := g.MovesSAN(); len(san) > 0 {
		fmt.Fprintf(c.out, "Moves: %s\n", strings.Join(san, " "))
	}
	fmt.Fprintf(c.out, "Status: %s\n", g.Status())
	return nil
}

// handleDiagram writes a PNG of the position.
func (c *Console) handleDiagram(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: diagram <file.png>")
	}
	g, err := c.game()
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	opts := c.render
	opts.LastMove = g.LastMove()
	opts.Flip = g.Turn() == board.Black
	st := g.State()
	if err := render.PNG(f, &st, opts); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "diagram %s\n", args[0])
	return nil
}

// handlePerft counts the legal move tree.
func (c *Console) handlePerft(args []string) error {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			return fmt.Errorf("perft depth %q must be a positive number", args[0])
		}
		depth = d
	}
	g, err := c.game()
	if err != nil {
		return err
	}
	st := g.State()

	start := time.Now()
	nodes := st.Perft(depth)
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(c.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(c.out, "NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	return nil
}

func (c *Console) handleHelp() {
	fmt.Fprint(c.out, `commands:
  position startpos|fen <fen>|white ...|black ...|<moves> [moves ...]
  moves              list the legal moves
  play <move>        play a move (g1-f3 or Nf3)
  go [play]          evaluate all moves and pick one
  eval <move>        evaluate one move
  fen                print the FEN
  d                  print the board
  diagram <file>     write a PNG diagram
  perft [depth]      count the move tree
  quit
`)
}
