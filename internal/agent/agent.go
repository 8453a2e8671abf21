package agent

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

var (
	ErrTimeout           = errors.New("agent timed out")
	ErrUnreachable       = errors.New("agent unreachable")
	ErrMalformedResponse = errors.New("malformed agent response")
	ErrNoAvailableMoves  = errors.New("no available moves")
)

// Agent is one competing player. RequestPlacement never mutates the plateau; the caller
// commits the returned placement and reports success with RecordPlacement.
type Agent interface {
	Name() string
	Player() entity.Player
	RequestPlacement(ctx context.Context, board *plateau.Plateau, piece entity.Piece) entity.PlayerResponse

	PlacementCount() int
	RecordPlacement()
}

// Tally counts committed placements; embed it to satisfy the accounting half of Agent.
type Tally struct {
	placements int
}

func (that *Tally) RecordPlacement() {
	that.placements++
}

func (that *Tally) PlacementCount() int {
	return that.placements
}
