package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/filler-arbiter/internal/agent"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/piece"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

// Termination tells why Run returned.
type Termination string

const (
	TerminatedByErrors    Termination = "consecutive_errors"
	TerminatedByMoveLimit Termination = "move_limit"
	TerminatedByCaller    Termination = "stopped"
)

// Engine drives a match: one turn at a time, strictly sequential, round robin over the
// seated agents. It is not safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	players  []agent.Agent
	plateau  *plateau.Plateau
	pieces   piece.Source
	observer Observer

	errorThreshold int
	maxMoves       int

	moveCount         int
	consecutiveErrors int
	history           []entity.PlayerResponse
}

func New(conf Config) (*Engine, error) {
	conf, err := conf.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("could not configure engine: %w", err)
	}

	players := []agent.Agent{conf.Player1}
	if conf.Player2 != nil {
		players = append(players, conf.Player2)
	}

	return &Engine{
		logger:         conf.Logger.With("component", "engine"),
		players:        players,
		plateau:        conf.Plateau,
		pieces:         conf.Pieces,
		observer:       conf.Observer,
		errorThreshold: conf.ErrorThreshold,
		maxMoves:       conf.MaxMoves,
	}, nil
}

// NextMove plays one turn: the agent whose turn it is gets a fresh piece and a snapshot of
// the plateau, and its answer is committed if it is legal. Failures are reported in the
// response, never returned.
func (that *Engine) NextMove(ctx context.Context) entity.PlayerResponse {
	current := that.players[that.moveCount%len(that.players)]
	that.moveCount++

	next := that.pieces.Next()

	response := current.RequestPlacement(ctx, that.plateau.Clone(), next)
	response.Player = current.Player()
	response.Piece = next

	if response.Err != nil {
		return response
	}

	if response.Placement == nil {
		response.Err = fmt.Errorf("%w: no placement", agent.ErrMalformedResponse)
		return response
	}

	if err := that.plateau.CommitPlacement(next, *response.Placement, current.Player()); err != nil {
		response.Err = fmt.Errorf("invalid placement at %s: %w", *response.Placement, err)
		return response
	}

	current.RecordPlacement()

	return response
}

// Run plays turns until the consecutive error threshold is reached, the move limit is
// hit, or ctx is canceled. Every turn is recorded in the history.
func (that *Engine) Run(ctx context.Context) Termination {
	log := that.logger.With("method", "Run")

	for _, player := range that.players {
		log.Info("player seated", "player", player.Player().String(), "name", player.Name())
	}

	termination := that.loop(ctx, log)

	log.Info("match over", "reason", string(termination), "moves", that.moveCount)
	for _, score := range that.PlacementCounts() {
		log.Info("final score",
			"player", score.Player.String(),
			"name", score.Name,
			"placements", score.Placements,
			"territory", score.Territory,
		)
	}

	return termination
}

func (that *Engine) loop(ctx context.Context, log *slog.Logger) Termination {
	for {
		if ctx.Err() != nil {
			return TerminatedByCaller
		}

		if that.maxMoves > 0 && that.moveCount >= that.maxMoves {
			return TerminatedByMoveLimit
		}

		response := that.NextMove(ctx)
		that.observer.OnMove(that, response)
		that.history = append(that.history, response)

		if response.Err == nil {
			that.consecutiveErrors = 0
			continue
		}

		that.consecutiveErrors++
		log.Debug("turn failed",
			"player", response.Player.String(),
			"error", response.Err,
			"consecutive", that.consecutiveErrors,
		)

		if that.consecutiveErrors >= that.errorThreshold {
			return TerminatedByErrors
		}
	}
}

// PlacementCounts - per seat, in turn order, the committed placements and owned cells.
func (that *Engine) PlacementCounts() []entity.Score {
	scores := make([]entity.Score, 0, len(that.players))
	for _, player := range that.players {
		scores = append(scores, entity.Score{
			Player:     player.Player(),
			Name:       player.Name(),
			Placements: player.PlacementCount(),
			Territory:  that.plateau.Count(player.Player()),
		})
	}

	return scores
}

func (that *Engine) PlayerNames() []string {
	names := make([]string, 0, len(that.players))
	for _, player := range that.players {
		names = append(names, player.Name())
	}

	return names
}

// Replay - static plateau description, player names and the full history.
func (that *Engine) Replay() entity.Replay {
	history := make([]entity.TurnRecord, 0, len(that.history))
	for _, response := range that.history {
		history = append(history, response.Record())
	}

	return entity.Replay{
		Players: that.PlayerNames(),
		Plateau: that.plateau.Info(),
		History: history,
		Scores:  that.PlacementCounts(),
	}
}

// Plateau returns the live plateau. Callers must treat it as read-only.
func (that *Engine) Plateau() *plateau.Plateau {
	return that.plateau
}

func (that *Engine) History() []entity.PlayerResponse {
	return append([]entity.PlayerResponse(nil), that.history...)
}

func (that *Engine) Moves() int {
	return that.moveCount
}

func (that *Engine) ConsecutiveErrors() int {
	return that.consecutiveErrors
}
