package entity

// Wire glyphs shared by the plateau and piece renderings.
const (
	GlyphEmpty      = '.'
	GlyphPlayer1    = 'O'
	GlyphPlayer1New = 'o'
	GlyphPlayer2    = 'X'
	GlyphPlayer2New = 'x'

	GlyphPieceFilled = '*'
	GlyphPieceEmpty  = '.'
)

// Cell is one square of the plateau. An empty cell has no Owner; IsNew marks cells
// stamped by the most recent placement.
type Cell struct {
	Owner Player `json:"owner,omitempty"`
	IsNew bool   `json:"is_new,omitempty"`
}

func EmptyCell() Cell {
	return Cell{}
}

func OwnedBy(player Player, isNew bool) Cell {
	return Cell{Owner: player, IsNew: isNew}
}

func (that Cell) IsEmpty() bool {
	return that.Owner == 0
}

// SameOwner compares ownership only; IsNew is ignored.
func (that Cell) SameOwner(other Cell) bool {
	return that.Owner == other.Owner
}

// Aged returns the cell with the IsNew flag cleared.
func (that Cell) Aged() Cell {
	that.IsNew = false
	return that
}

func (that Cell) Glyph() byte {
	switch {
	case that.Owner == Player1 && that.IsNew:
		return GlyphPlayer1New
	case that.Owner == Player1:
		return GlyphPlayer1
	case that.Owner == Player2 && that.IsNew:
		return GlyphPlayer2New
	case that.Owner == Player2:
		return GlyphPlayer2
	default:
		return GlyphEmpty
	}
}
