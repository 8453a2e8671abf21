package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rocketscienceinc/filler-arbiter/internal/agent"
	"github.com/rocketscienceinc/filler-arbiter/internal/config"
	"github.com/rocketscienceinc/filler-arbiter/internal/engine"
	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/piece"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
	"github.com/rocketscienceinc/filler-arbiter/internal/repository"
	"github.com/rocketscienceinc/filler-arbiter/internal/repository/storage"
	"github.com/rocketscienceinc/filler-arbiter/internal/usecase"
	"github.com/rocketscienceinc/filler-arbiter/transport/rest"
	"github.com/rocketscienceinc/filler-arbiter/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - plays one match and, when an HTTP port is configured, keeps serving its replay
// until a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	board, err := newPlateau(conf.Match.Plateau)
	if err != nil {
		return err
	}

	pieces, err := piece.NewBag(
		piece.Range{Min: conf.Match.Pieces.MinWidth, Max: conf.Match.Pieces.MaxWidth},
		piece.Range{Min: conf.Match.Pieces.MinHeight, Max: conf.Match.Pieces.MaxHeight},
		conf.Match.Pieces.Seed,
	)
	if err != nil {
		return fmt.Errorf("could not create piece bag: %w", err)
	}

	player1, err := newAgent(ctx, logger, conf.Match, conf.Match.Player1, entity.Player1)
	if err != nil {
		return fmt.Errorf("could not start player1: %w", err)
	}
	defer closeAgent(log, player1)

	var player2 agent.Agent
	if conf.Match.Player2 != "" {
		player2, err = newAgent(ctx, logger, conf.Match, conf.Match.Player2, entity.Player2)
		if err != nil {
			return fmt.Errorf("could not start player2: %w", err)
		}
		defer closeAgent(log, player2)
	}

	var replayRepo repository.ReplayRepository
	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		replayRepo = repository.NewReplayRepository(redisStorage.Connection, conf.Redis.TTL)
	}

	matchManager := usecase.NewMatchManager(logger, replayRepo, conf.ReplayPath)

	var observer engine.Observer = engine.Silent{}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	if conf.HTTPPort != "" {
		hub := websocket.NewHub(logger, conf.AllowedOrigins)
		observer = hub

		router := rest.NewRouter(logger, matchManager, hub)
		go func() {
			log.Info("Starting HTTP server", "port", conf.HTTPPort)
			if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
				log.Error("HTTP server error", "error", httpErr)
				httpErrCh <- httpErr
			}
		}()
	}

	match, err := engine.New(engine.Config{
		Player1:        player1,
		Player2:        player2,
		Plateau:        board,
		Pieces:         pieces,
		Verbose:        conf.Match.Verbose,
		Observer:       observer,
		ErrorThreshold: conf.Match.ErrorThreshold,
		MaxMoves:       conf.Match.MaxMoves,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create match: %w", err)
	}

	replay, err := matchManager.Play(ctx, match)
	if err != nil {
		log.Error("match replay was not fully saved", "error", err)
	}

	if replay != nil {
		log.Info("Replay ready", "replay_id", replay.ID, "turns", len(replay.History))
	}

	if conf.HTTPPort == "" {
		return nil
	}

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newPlateau(conf config.Plateau) (*plateau.Plateau, error) {
	board, err := plateau.New(
		conf.Width,
		conf.Height,
		entity.NewPoint(conf.Player1X, conf.Player1Y),
		entity.NewPoint(conf.Player2X, conf.Player2Y),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create plateau: %w", err)
	}

	return board, nil
}

// newAgent - ref is either agent.RandomName or an executable path followed by its arguments.
func newAgent(ctx context.Context, logger *slog.Logger, conf config.Match, ref string, player entity.Player) (agent.Agent, error) {
	if ref == agent.RandomName {
		seed := conf.Pieces.Seed
		if seed != 0 {
			seed += int64(player.Number())
		}
		return agent.NewRandom(player, seed), nil
	}

	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return nil, agent.ErrNoExecutable
	}

	process, err := agent.NewProcess(ctx, logger, agent.ProcessConfig{
		Path:    fields[0],
		Args:    fields[1:],
		Timeout: conf.Timeout,
		Player:  player,
	})
	if err != nil {
		return nil, err
	}

	return process, nil
}

func closeAgent(log *slog.Logger, player agent.Agent) {
	closer, ok := player.(io.Closer)
	if !ok {
		return
	}

	if err := closer.Close(); err != nil {
		log.Error("could not close agent", "player", player.Player(), "error", err)
	}
}
