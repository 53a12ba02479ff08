package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/simon-void/voidchess-engine/internal/board"
)

// renderScale is the supersampling factor of the rasterizer.
const renderScale = 3

const (
	minSquareSize = 16
	maxSquareSize = 256
)

// Image rasterizes the diagram of s.
func Image(s *board.State, opts Options) (*image.RGBA, error) {
	if opts.SquareSize < minSquareSize || opts.SquareSize > maxSquareSize {
		return nil, fmt.Errorf("square size %d outside [%d, %d]", opts.SquareSize, minSquareSize, maxSquareSize)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(SVG(s, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse diagram svg: %w", err)
	}

	// Render at higher resolution, then scale down for smooth edges.
	size := 8 * opts.SquareSize
	hiSize := size * renderScale
	icon.SetTarget(0, 0, float64(hiSize), float64(hiSize))
	hi := image.NewRGBA(image.Rect(0, 0, hiSize, hiSize))
	scanner := rasterx.NewScannerGV(hiSize, hiSize, hi, hi.Bounds())
	raster := rasterx.NewDasher(hiSize, hiSize, scanner)
	icon.Draw(raster, 1.0)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(img, img.Bounds(), hi, hi.Bounds(), draw.Src, nil)

	if opts.Coordinates {
		if err := drawCoordinates(img, opts); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// PNG writes the diagram of s as a PNG image.
func PNG(w io.Writer, s *board.State, opts Options) error {
	img, err := Image(s, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

var labelFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// drawCoordinates labels the bottom row with files and the left column
// with ranks, in the color of the opposite square.
func drawCoordinates(img *image.RGBA, opts Options) error {
	f, err := labelFont()
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(opts.SquareSize) / 5,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("label face: %w", err)
	}
	defer face.Close()

	light := color.RGBA{0xf0, 0xd9, 0xb5, 0xff}
	dark := color.RGBA{0xb5, 0x88, 0x63, 0xff}
	size := opts.SquareSize
	pad := size / 16
	ascent := face.Metrics().Ascent.Ceil()

	d := &font.Drawer{Dst: img, Face: face}
	for i := 0; i < 8; i++ {
		// i-th column and row on screen, counted from the top left
		file, rank := i, 7-i
		if opts.Flip {
			file, rank = 7-i, i
		}

		fileSq := board.NewSquare(file, 0)
		if opts.Flip {
			fileSq = board.NewSquare(file, 7)
		}
		label := string(rune('a' + file))
		d.Src = image.NewUniform(contrast(fileSq, light, dark))
		w := d.MeasureString(label).Ceil()
		d.Dot = fixed.P((i+1)*size-w-pad, 8*size-pad)
		d.DrawString(label)

		rankSq := board.NewSquare(0, rank)
		if opts.Flip {
			rankSq = board.NewSquare(7, rank)
		}
		d.Src = image.NewUniform(contrast(rankSq, light, dark))
		d.Dot = fixed.P(pad, i*size+pad+ascent)
		d.DrawString(string(rune('1' + rank)))
	}
	return nil
}

func contrast(sq board.Square, light, dark color.RGBA) color.RGBA {
	if (sq.Column()+sq.Row())%2 == 1 {
		return dark
	}
	return light
}
