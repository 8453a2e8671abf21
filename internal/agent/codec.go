package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

// Handshake - first line an agent process receives.
func Handshake(player entity.Player, path string) string {
	return fmt.Sprintf("$$$ exec p%d : [%s]\n", player.Number(), path)
}

// EncodeTurn renders the plateau followed by the piece.
func EncodeTurn(board *plateau.Plateau, piece entity.Piece) string {
	return board.String() + piece.String()
}

// ParseResponse reads the placement anchor from an agent answer. Only the trailing two
// integers are used; anything before them is an identifier.
func ParseResponse(line string) (entity.Point, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return entity.Point{}, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
	}

	x, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return entity.Point{}, fmt.Errorf("%w: x in %q", ErrMalformedResponse, line)
	}

	y, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return entity.Point{}, fmt.Errorf("%w: y in %q", ErrMalformedResponse, line)
	}

	return entity.Point{X: x, Y: y}, nil
}

// FormatResponse writes an answer the way ParseResponse expects it.
func FormatResponse(name string, at entity.Point) string {
	return fmt.Sprintf("%s %d %d", name, at.X, at.Y)
}
