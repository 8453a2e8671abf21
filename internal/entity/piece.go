package entity

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPiece = errors.New("invalid piece")

// Piece is an immutable rectangular occupancy mask stored row-major.
type Piece struct {
	width  int
	height int
	cells  []bool
}

type pieceJSON struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []bool `json:"cells"`
}

func NewPiece(width, height int, cells []bool) (Piece, error) {
	if width <= 0 || height <= 0 {
		return Piece{}, fmt.Errorf("%w: size %dx%d", ErrInvalidPiece, width, height)
	}

	if len(cells) != width*height {
		return Piece{}, fmt.Errorf("%w: %d cells for size %dx%d", ErrInvalidPiece, len(cells), width, height)
	}

	mask := make([]bool, len(cells))
	copy(mask, cells)

	return Piece{width: width, height: height, cells: mask}, nil
}

// ParsePiece reads the wire rendering produced by Piece.String.
func ParsePiece(text string) (Piece, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	if !scanner.Scan() {
		return Piece{}, fmt.Errorf("%w: missing header", ErrInvalidPiece)
	}

	var width, height int
	if _, err := fmt.Sscanf(scanner.Text(), "Piece %d %d:", &height, &width); err != nil {
		return Piece{}, fmt.Errorf("%w: bad header %q: %w", ErrInvalidPiece, scanner.Text(), err)
	}

	if width <= 0 || height <= 0 {
		return Piece{}, fmt.Errorf("%w: size %dx%d", ErrInvalidPiece, width, height)
	}

	cells := make([]bool, 0, width*height)
	for row := 0; row < height; row++ {
		if !scanner.Scan() {
			return Piece{}, fmt.Errorf("%w: missing row %d", ErrInvalidPiece, row)
		}

		line := scanner.Text()
		if len(line) != width {
			return Piece{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidPiece, row, len(line), width)
		}

		for _, glyph := range []byte(line) {
			switch glyph {
			case GlyphPieceFilled:
				cells = append(cells, true)
			case GlyphPieceEmpty:
				cells = append(cells, false)
			default:
				return Piece{}, fmt.Errorf("%w: unexpected glyph %q in row %d", ErrInvalidPiece, glyph, row)
			}
		}
	}

	return NewPiece(width, height, cells)
}

func (that Piece) Width() int {
	return that.width
}

func (that Piece) Height() int {
	return that.height
}

// At reports whether the local sub-cell (x, y) is occupied. Out of range is unoccupied.
func (that Piece) At(x, y int) bool {
	if x < 0 || x >= that.width || y < 0 || y >= that.height {
		return false
	}

	return that.cells[y*that.width+x]
}

// Occupied returns the local offsets of every set sub-cell in row-major order.
func (that Piece) Occupied() []Point {
	points := make([]Point, 0, len(that.cells))
	for y := 0; y < that.height; y++ {
		for x := 0; x < that.width; x++ {
			if that.cells[y*that.width+x] {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}

	return points
}

// Cells returns a copy of the row-major mask.
func (that Piece) Cells() []bool {
	return append([]bool(nil), that.cells...)
}

func (that Piece) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Piece %d %d:\n", that.height, that.width)
	for y := 0; y < that.height; y++ {
		for x := 0; x < that.width; x++ {
			if that.cells[y*that.width+x] {
				sb.WriteByte(GlyphPieceFilled)
			} else {
				sb.WriteByte(GlyphPieceEmpty)
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (that Piece) MarshalJSON() ([]byte, error) {
	return json.Marshal(pieceJSON{Width: that.width, Height: that.height, Cells: that.cells})
}

func (that *Piece) UnmarshalJSON(data []byte) error {
	var raw pieceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("could not unmarshal piece: %w", err)
	}

	piece, err := NewPiece(raw.Width, raw.Height, raw.Cells)
	if err != nil {
		return err
	}

	*that = piece

	return nil
}
