package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
)

const (
	DefaultTimeout = 2 * time.Second

	closeGrace = time.Second
	lineBuffer = 16
)

var ErrNoExecutable = errors.New("agent executable is empty")

type ProcessConfig struct {
	Path    string
	Args    []string
	Env     []string
	Timeout time.Duration
	Player  entity.Player
}

// Process runs an agent as a child process speaking the line protocol over stdin/stdout.
type Process struct {
	Tally

	logger  *slog.Logger
	name    string
	path    string
	player  entity.Player
	timeout time.Duration

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	exited chan struct{}

	// owed counts answers still due for turns that timed out or were canceled. The agent
	// answers turns in order, so that many lines belong to past turns.
	owed int

	closeOnce sync.Once
}

// NewProcess spawns the agent and sends the handshake. The process lives until Close or
// until ctx is canceled.
func NewProcess(ctx context.Context, logger *slog.Logger, conf ProcessConfig) (*Process, error) {
	if conf.Path == "" {
		return nil, ErrNoExecutable
	}

	if !conf.Player.IsValid() {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnknownPlayer, conf.Player)
	}

	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cmd := exec.CommandContext(ctx, conf.Path, conf.Args...) //nolint: gosec // agents are trusted executables
	if len(conf.Env) > 0 {
		cmd.Env = append(cmd.Environ(), conf.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("could not open agent stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("could not open agent stdout: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: could not start %s: %w", ErrUnreachable, conf.Path, err)
	}

	name := strings.TrimSuffix(filepath.Base(conf.Path), filepath.Ext(conf.Path))

	process := &Process{
		logger:  logger.With("component", "agent", "name", name, "player", conf.Player.String()),
		name:    name,
		path:    conf.Path,
		player:  conf.Player,
		timeout: timeout,
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan string, lineBuffer),
		exited:  make(chan struct{}),
	}

	go process.readLines(stdout)

	if _, err = io.WriteString(stdin, Handshake(conf.Player, conf.Path)); err != nil {
		_ = process.Close()
		return nil, fmt.Errorf("%w: handshake: %w", ErrUnreachable, err)
	}

	process.logger.Info("agent started", "pid", cmd.Process.Pid)

	return process, nil
}

func (that *Process) Name() string {
	return that.name
}

func (that *Process) Player() entity.Player {
	return that.player
}

// RequestPlacement sends the turn and waits for one answer line within the timeout. Late
// answers to earlier turns are skipped, even when they arrive after this turn was sent.
// Not safe for concurrent use.
func (that *Process) RequestPlacement(ctx context.Context, board *plateau.Plateau, piece entity.Piece) entity.PlayerResponse {
	response := entity.PlayerResponse{Player: that.player, Piece: piece}

	if !that.drain() {
		response.Err = fmt.Errorf("%w: process exited", ErrUnreachable)
		return response
	}

	if _, err := io.WriteString(that.stdin, EncodeTurn(board, piece)); err != nil {
		response.Err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		return response
	}

	timer := time.NewTimer(that.timeout)
	defer timer.Stop()

	for {
		select {
		case line, ok := <-that.lines:
			if !ok {
				response.Err = fmt.Errorf("%w: process exited", ErrUnreachable)
				return response
			}

			if that.owed > 0 {
				that.owed--
				that.logger.Debug("dropping late answer", "line", line, "still_owed", that.owed)
				continue
			}

			response.RawResponse = line

			at, err := ParseResponse(line)
			if err != nil {
				response.Err = err
				return response
			}

			response.Placement = &at
		case <-timer.C:
			that.owed++
			response.Err = fmt.Errorf("%w after %s", ErrTimeout, that.timeout)
		case <-ctx.Done():
			that.owed++
			response.Err = fmt.Errorf("request canceled: %w", ctx.Err())
		}

		return response
	}
}

// Close stops the agent: stdin is closed first, the process is killed if it lingers.
func (that *Process) Close() error {
	var err error

	that.closeOnce.Do(func() {
		_ = that.stdin.Close()

		select {
		case <-that.exited:
		case <-time.After(closeGrace):
			if killErr := that.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
				err = fmt.Errorf("could not kill agent: %w", killErr)
			}
			<-that.exited
		}

		that.logger.Info("agent stopped")
	})

	return err
}

// drain drops answers that arrived between turns. It reports false once the process has
// exited and all its output was consumed.
func (that *Process) drain() bool {
	for {
		select {
		case line, ok := <-that.lines:
			if !ok {
				return false
			}
			if that.owed > 0 {
				that.owed--
			}
			that.logger.Debug("dropping late answer", "line", line)
		default:
			return true
		}
	}
}

func (that *Process) readLines(stdout io.Reader) {
	defer close(that.exited)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		select {
		case that.lines <- line:
		default:
			that.logger.Warn("agent output buffer full, dropping line", "line", line)
		}
	}
	close(that.lines)

	if err := that.cmd.Wait(); err != nil {
		that.logger.Debug("agent exited", "error", err)
	}
}
