// Package render draws board diagrams: an SVG document of the position,
// rasterized with oksvg and scaled down to a PNG.
package render

import (
	"fmt"
	"strings"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// Options controls the diagram layout.
type Options struct {
	SquareSize  int        // pixels per square in the final image
	Flip        bool       // black at the bottom
	LastMove    board.Move // highlighted when not NoMove
	Coordinates bool       // file letters and rank digits
}

// DefaultOptions returns a 60 pixel per square diagram with coordinates.
func DefaultOptions() Options {
	return Options{SquareSize: 60, LastMove: board.NoMove, Coordinates: true}
}

// Board colors
const (
	lightSquare     = "#f0d9b5"
	darkSquare      = "#b58863"
	lightHighlight  = "#cdd26a"
	darkHighlight   = "#aaa23a"
	whiteFill       = "#f8f8f8"
	whiteOutline    = "#222222"
	blackFill       = "#262626"
	blackOutline    = "#e0e0e0"
	pieceStrokeUnit = 0.025
)

type point struct{ x, y float64 }

// shape is a piece silhouette in unit square coordinates, y pointing down.
type shape struct {
	polygons [][]point
	circles  [][3]float64 // cx, cy, r
}

var pedestal = []point{{0.22, 0.86}, {0.78, 0.86}, {0.78, 0.76}, {0.22, 0.76}}

var pieceShapes = map[board.PieceType]shape{
	board.Pawn: {
		polygons: [][]point{
			{{0.34, 0.76}, {0.43, 0.46}, {0.57, 0.46}, {0.66, 0.76}},
			pedestal,
		},
		circles: [][3]float64{{0.5, 0.36, 0.12}},
	},
	board.Rook: {
		polygons: [][]point{
			{{0.28, 0.2}, {0.36, 0.2}, {0.36, 0.27}, {0.46, 0.27}, {0.46, 0.2}, {0.54, 0.2},
				{0.54, 0.27}, {0.64, 0.27}, {0.64, 0.2}, {0.72, 0.2}, {0.72, 0.35}, {0.64, 0.4},
				{0.64, 0.76}, {0.36, 0.76}, {0.36, 0.4}, {0.28, 0.35}},
			pedestal,
		},
	},
	board.Knight: {
		polygons: [][]point{
			{{0.32, 0.76}, {0.38, 0.52}, {0.24, 0.48}, {0.28, 0.32}, {0.44, 0.18},
				{0.6, 0.2}, {0.72, 0.36}, {0.7, 0.76}},
			pedestal,
		},
	},
	board.Bishop: {
		polygons: [][]point{
			{{0.5, 0.2}, {0.64, 0.4}, {0.57, 0.55}, {0.62, 0.76}, {0.38, 0.76}, {0.43, 0.55}, {0.36, 0.4}},
			pedestal,
		},
		circles: [][3]float64{{0.5, 0.15, 0.05}},
	},
	board.Queen: {
		polygons: [][]point{
			{{0.2, 0.3}, {0.33, 0.5}, {0.35, 0.22}, {0.45, 0.48}, {0.5, 0.18}, {0.55, 0.48},
				{0.65, 0.22}, {0.67, 0.5}, {0.8, 0.3}, {0.7, 0.76}, {0.3, 0.76}},
			pedestal,
		},
	},
	board.King: {
		polygons: [][]point{
			{{0.46, 0.08}, {0.54, 0.08}, {0.54, 0.14}, {0.6, 0.14}, {0.6, 0.21}, {0.54, 0.21},
				{0.54, 0.3}, {0.46, 0.3}, {0.46, 0.21}, {0.4, 0.21}, {0.4, 0.14}, {0.46, 0.14}},
			{{0.3, 0.76}, {0.24, 0.42}, {0.5, 0.32}, {0.76, 0.42}, {0.7, 0.76}},
			pedestal,
		},
	},
}

// squareOrigin returns the top-left pixel of sq.
func squareOrigin(sq board.Square, size float64, flip bool) (float64, float64) {
	col, row := sq.Column(), 7-sq.Row()
	if flip {
		col, row = 7-sq.Column(), sq.Row()
	}
	return float64(col) * size, float64(row) * size
}

// SVG returns the diagram of s as an SVG document of 8*size pixels.
func SVG(s *board.State, opts Options) string {
	size := float64(opts.SquareSize)
	total := 8 * size

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		total, total, total, total)

	highlighted := func(sq board.Square) bool {
		return opts.LastMove != board.NoMove && (opts.LastMove.From() == sq || opts.LastMove.To() == sq)
	}
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		x, y := squareOrigin(sq, size, opts.Flip)
		light := (sq.Column()+sq.Row())%2 == 1
		fill := darkSquare
		switch {
		case light && highlighted(sq):
			fill = lightHighlight
		case highlighted(sq):
			fill = darkHighlight
		case light:
			fill = lightSquare
		}
		fmt.Fprintf(&sb, `<rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>`+"\n", x, y, size, size, fill)
	}

	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		f := s.At(sq)
		if f == board.NoFigure {
			continue
		}
		x, y := squareOrigin(sq, size, opts.Flip)
		writePiece(&sb, f, x, y, size)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePiece(sb *strings.Builder, f board.Figure, x, y, size float64) {
	fill, outline := whiteFill, whiteOutline
	if f.Color() == board.Black {
		fill, outline = blackFill, blackOutline
	}
	style := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%g"`, fill, outline, pieceStrokeUnit*size)

	sh := pieceShapes[f.Type()]
	for _, poly := range sh.polygons {
		sb.WriteString(`<path d="`)
		for i, p := range poly {
			cmd := 'L'
			if i == 0 {
				cmd = 'M'
			}
			fmt.Fprintf(sb, "%c%.2f %.2f ", cmd, x+p.x*size, y+p.y*size)
		}
		fmt.Fprintf(sb, `Z" %s/>`+"\n", style)
	}
	for _, c := range sh.circles {
		fmt.Fprintf(sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" %s/>`+"\n", x+c[0]*size, y+c[1]*size, c[2]*size, style)
	}
}
