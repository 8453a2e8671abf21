package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rocketscienceinc/filler-arbiter/internal/agent"
	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/piece"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

// DefaultErrorThreshold - consecutive failed turns that end a match.
const DefaultErrorThreshold = 6

// Config describes a match. Only Player1 is required.
type Config struct {
	// Player1 moves first. Required.
	Player1 agent.Agent
	// Player2 is optional; without it Player1 plays alone.
	Player2 agent.Agent

	// Plateau defaults to plateau.Default().
	Plateau *plateau.Plateau
	// Pieces defaults to piece.DefaultBag().
	Pieces piece.Source

	// Verbose adds a Verbose observer writing to Output (os.Stdout when nil).
	Verbose bool
	Output  io.Writer
	// Observer is notified after every turn. Defaults to Silent.
	Observer Observer

	// ErrorThreshold defaults to DefaultErrorThreshold.
	ErrorThreshold int
	// MaxMoves stops the match after that many turns; 0 means no limit.
	MaxMoves int

	Logger *slog.Logger
}

func (that Config) withDefaults() (Config, error) {
	if that.Player1 == nil {
		return that, apperror.ErrNoAgent
	}

	if that.Player1.Player() != entity.Player1 {
		return that, fmt.Errorf("%w: first agent plays as %s", apperror.ErrInvalidConfig, that.Player1.Player())
	}

	if that.Player2 != nil && that.Player2.Player() != entity.Player2 {
		return that, fmt.Errorf("%w: second agent plays as %s", apperror.ErrInvalidConfig, that.Player2.Player())
	}

	if that.ErrorThreshold < 0 || that.MaxMoves < 0 {
		return that, fmt.Errorf("%w: negative limits", apperror.ErrInvalidConfig)
	}

	if that.Plateau == nil {
		that.Plateau = plateau.Default()
	}

	if that.Pieces == nil {
		that.Pieces = piece.DefaultBag()
	}

	if that.ErrorThreshold == 0 {
		that.ErrorThreshold = DefaultErrorThreshold
	}

	if that.Logger == nil {
		that.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if that.Observer == nil {
		that.Observer = Silent{}
	}

	if that.Verbose {
		out := that.Output
		if out == nil {
			out = os.Stdout
		}
		that.Observer = Multi{that.Observer, NewVerbose(out)}
	}

	return that, nil
}
