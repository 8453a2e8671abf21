package agent

import (
	"context"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

// RandomName is the player reference that selects the in-process bot.
const RandomName = "random"

// Random is an in-process agent that picks a legal anchor uniformly at random.
type Random struct {
	Tally

	player entity.Player
	rng    *rand.Rand
}

func NewRandom(player entity.Player, seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Random{
		player: player,
		rng:    rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *Random) Name() string {
	return RandomName
}

func (that *Random) Player() entity.Player {
	return that.player
}

func (that *Random) RequestPlacement(ctx context.Context, board *plateau.Plateau, piece entity.Piece) entity.PlayerResponse {
	response := entity.PlayerResponse{Player: that.player, Piece: piece}

	if err := ctx.Err(); err != nil {
		response.Err = err
		return response
	}

	available := LegalPlacements(board, piece, that.player)
	if len(available) == 0 {
		response.Err = ErrNoAvailableMoves
		return response
	}

	chosen := available[that.rng.Intn(len(available))]
	response.RawResponse = FormatResponse(that.Name(), chosen)

	at, err := ParseResponse(response.RawResponse)
	if err != nil {
		response.Err = err
		return response
	}

	response.Placement = &at

	return response
}

// LegalPlacements lists every anchor at which the piece is a valid placement.
func LegalPlacements(board *plateau.Plateau, piece entity.Piece, player entity.Player) []entity.Point {
	var anchors []entity.Point

	for y := 1 - piece.Height(); y < board.Height(); y++ {
		for x := 1 - piece.Width(); x < board.Width(); x++ {
			at := entity.Point{X: x, Y: y}
			if board.ValidatePlacement(piece, at, player) == nil {
				anchors = append(anchors, at)
			}
		}
	}

	return anchors
}
