package piece

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

var ErrInvalidRange = errors.New("invalid piece size range")

// Source hands out the piece to place on each turn.
type Source interface {
	Next() entity.Piece
}

// Range is an inclusive [Min, Max] size range.
type Range struct {
	Min int
	Max int
}

func (that Range) validate() error {
	if that.Min <= 0 || that.Max < that.Min {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, that.Min, that.Max)
	}
	return nil
}

var DefaultRange = Range{Min: 5, Max: 7}

// Bag draws random connected pieces whose sizes fall within the configured ranges.
type Bag struct {
	width  Range
	height Range
	rng    *rand.Rand
}

// NewBag builds a bag; a zero seed seeds from the clock.
func NewBag(width, height Range, seed int64) (*Bag, error) {
	if err := width.validate(); err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}

	if err := height.validate(); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Bag{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(seed)), //nolint: gosec // game randomness
	}, nil
}

// DefaultBag - time-seeded bag over the default ranges.
func DefaultBag() *Bag {
	bag, err := NewBag(DefaultRange, DefaultRange, 0)
	if err != nil {
		panic(fmt.Errorf("default bag: %w", err))
	}

	return bag
}

func (that *Bag) Next() entity.Piece {
	width := that.between(that.width)
	height := that.between(that.height)
	cells := make([]bool, width*height)

	target := 1 + that.rng.Intn(max(1, width*height/3))

	start := that.rng.Intn(len(cells))
	cells[start] = true
	filled := []int{start}

	for len(filled) < target {
		from := filled[that.rng.Intn(len(filled))]
		x, y := from%width, from/width

		switch that.rng.Intn(4) {
		case 0:
			x++
		case 1:
			x--
		case 2:
			y++
		default:
			y--
		}

		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}

		idx := y*width + x
		if cells[idx] {
			continue
		}

		cells[idx] = true
		filled = append(filled, idx)
	}

	piece, err := entity.NewPiece(width, height, cells)
	if err != nil {
		panic(fmt.Errorf("bag produced an invalid piece: %w", err))
	}

	return piece
}

func (that *Bag) between(r Range) int {
	return r.Min + that.rng.Intn(r.Max-r.Min+1)
}

// Sequence cycles through a fixed list of pieces.
type Sequence struct {
	pieces []entity.Piece
	next   int
}

func NewSequence(pieces ...entity.Piece) (*Sequence, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", entity.ErrInvalidPiece)
	}

	return &Sequence{pieces: pieces}, nil
}

func (that *Sequence) Next() entity.Piece {
	piece := that.pieces[that.next%len(that.pieces)]
	that.next++

	return piece
}
