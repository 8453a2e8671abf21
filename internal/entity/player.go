package entity

import (
	"errors"
	"fmt"
)

// Player identifies cell ownership and turn order. The zero value means "nobody".
type Player uint8

const (
	Player1 Player = iota + 1
	Player2
)

// PlayerCount is the number of seats in a match.
const PlayerCount = 2

var ErrUnknownPlayer = errors.New("unknown player")

// PlayerAt returns the player seated at the given turn-order index.
func PlayerAt(index int) (Player, error) {
	if index < 0 || index >= PlayerCount {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownPlayer, index)
	}

	return Player(index + 1), nil
}

func (that Player) IsValid() bool {
	return that == Player1 || that == Player2
}

// Index - position of the player in the turn order.
func (that Player) Index() int {
	return int(that) - 1
}

// Number - 1-based player number as used by the agent handshake.
func (that Player) Number() int {
	return int(that)
}

func (that Player) Opponent() Player {
	if that == Player1 {
		return Player2
	}
	return Player1
}

func (that Player) String() string {
	switch that {
	case Player1:
		return "Player1"
	case Player2:
		return "Player2"
	default:
		return fmt.Sprintf("Player(%d)", uint8(that))
	}
}

func (that Player) MarshalText() ([]byte, error) {
	if !that.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, uint8(that))
	}

	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Player1":
		*that = Player1
	case "Player2":
		*that = Player2
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, text)
	}

	return nil
}
