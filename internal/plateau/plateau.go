package plateau

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

const (
	DefaultSize = 50
)

var (
	DefaultPlayer1Start = entity.Point{X: 5, Y: 5}
	DefaultPlayer2Start = entity.Point{X: 44, Y: 44}
)

var (
	ErrOutOfBounds   = errors.New("piece out of bounds")
	ErrNoOverlap     = errors.New("no overlap")
	ErrExcessOverlap = errors.New("overlap greater than one")
	ErrEnemyOverlap  = errors.New("overlap on other player")
	ErrInvalidSize   = errors.New("invalid plateau size")
)

type placement struct {
	at    entity.Point
	piece entity.Piece
}

// Plateau is the ownership grid of a match. It is owned by a single writer; readers
// between turns must treat it as read-only.
type Plateau struct {
	width        int
	height       int
	player1Start entity.Point
	player2Start entity.Point
	cells        []entity.Cell
	last         *placement
}

// New builds a plateau with both starting cells owned by their players.
func New(width, height int, player1Start, player2Start entity.Point) (*Plateau, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	plateau := &Plateau{
		width:        width,
		height:       height,
		player1Start: player1Start,
		player2Start: player2Start,
		cells:        make([]entity.Cell, width*height),
	}

	if !plateau.IsInBounds(player1Start) {
		return nil, fmt.Errorf("%w: player1 start %s", ErrOutOfBounds, player1Start)
	}

	if !plateau.IsInBounds(player2Start) {
		return nil, fmt.Errorf("%w: player2 start %s", ErrOutOfBounds, player2Start)
	}

	plateau.set(player1Start, entity.OwnedBy(entity.Player1, false))
	plateau.set(player2Start, entity.OwnedBy(entity.Player2, false))

	return plateau, nil
}

// Default - 50x50 plateau with the standard starts. Panics only if the constants are broken.
func Default() *Plateau {
	plateau, err := New(DefaultSize, DefaultSize, DefaultPlayer1Start, DefaultPlayer2Start)
	if err != nil {
		panic(fmt.Errorf("default plateau: %w", err))
	}

	return plateau
}

func (that *Plateau) Width() int {
	return that.width
}

func (that *Plateau) Height() int {
	return that.height
}

func (that *Plateau) PlayerStart(player entity.Player) entity.Point {
	if player == entity.Player2 {
		return that.player2Start
	}
	return that.player1Start
}

// Info - static description used by replays.
func (that *Plateau) Info() entity.PlateauInfo {
	return entity.PlateauInfo{
		Width:        that.width,
		Height:       that.height,
		Player1Start: that.player1Start,
		Player2Start: that.player2Start,
	}
}

func (that *Plateau) IsInBounds(p entity.Point) bool {
	return p.X >= 0 && p.X < that.width && p.Y >= 0 && p.Y < that.height
}

// Cell returns the cell at p; out of bounds reads as empty.
func (that *Plateau) Cell(p entity.Point) entity.Cell {
	if !that.IsInBounds(p) {
		return entity.EmptyCell()
	}

	return that.get(p)
}

// Count - number of cells owned by the player.
func (that *Plateau) Count(player entity.Player) int {
	count := 0
	for _, cell := range that.cells {
		if cell.Owner == player {
			count++
		}
	}

	return count
}

// ValidatePlacement checks the placement without mutating the plateau. A legal placement
// covers exactly one cell of the player and none of the opponent.
func (that *Plateau) ValidatePlacement(piece entity.Piece, at entity.Point, player entity.Player) error {
	owner := entity.OwnedBy(player, false)
	overlap := false

	for _, offset := range piece.Occupied() {
		abs := at.Add(offset)
		if !that.IsInBounds(abs) {
			return fmt.Errorf("%w: %s", ErrOutOfBounds, abs)
		}

		cell := that.get(abs)
		switch {
		case cell.IsEmpty():
			continue
		case cell.SameOwner(owner):
			if overlap {
				return fmt.Errorf("%w: %s", ErrExcessOverlap, abs)
			}
			overlap = true
		default:
			return fmt.Errorf("%w: %s", ErrEnemyOverlap, abs)
		}
	}

	if !overlap {
		return ErrNoOverlap
	}

	return nil
}

// CommitPlacement ages the previous placement, then validates and stamps the new one.
// Aging is not rolled back when validation fails; new cells are written all-or-nothing.
func (that *Plateau) CommitPlacement(piece entity.Piece, at entity.Point, player entity.Player) error {
	that.agePlacement()

	if err := that.ValidatePlacement(piece, at, player); err != nil {
		return err
	}

	stamp := entity.OwnedBy(player, true)
	for _, offset := range piece.Occupied() {
		that.set(at.Add(offset), stamp)
	}

	that.last = &placement{at: at, piece: piece}

	return nil
}

func (that *Plateau) agePlacement() {
	if that.last == nil {
		return
	}

	last := that.last
	that.last = nil

	for _, offset := range last.piece.Occupied() {
		abs := last.at.Add(offset)
		that.set(abs, that.get(abs).Aged())
	}
}

// Clone returns an independent copy, used to hand snapshots to readers.
func (that *Plateau) Clone() *Plateau {
	clone := *that
	clone.cells = append([]entity.Cell(nil), that.cells...)
	if that.last != nil {
		last := *that.last
		clone.last = &last
	}

	return &clone
}

// String renders the plateau in the agent wire format.
func (that *Plateau) String() string {
	var sb strings.Builder

	sb.Grow((that.width + 5) * (that.height + 2))

	fmt.Fprintf(&sb, "Plateau %d %d:\n", that.height, that.width)
	sb.WriteString("    ")
	for x := 0; x < that.width; x++ {
		sb.WriteByte(byte('0' + x%10))
	}
	sb.WriteByte('\n')

	for y := 0; y < that.height; y++ {
		fmt.Fprintf(&sb, "%03d ", y)
		for x := 0; x < that.width; x++ {
			sb.WriteByte(that.cells[y*that.width+x].Glyph())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (that *Plateau) index(p entity.Point) int {
	return that.width*p.Y + p.X
}

func (that *Plateau) get(p entity.Point) entity.Cell {
	return that.cells[that.index(p)]
}

func (that *Plateau) set(p entity.Point, cell entity.Cell) {
	that.cells[that.index(p)] = cell
}
