package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
	"github.com/rocketscienceinc/filler-arbiter/internal/plateau"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "FILLER_HELPER_PROCESS"

// TestHelperProcess is not a real test: it plays the agent side when the test binary is
// re-executed by helperProcess.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}
	defer os.Exit(0)

	in := bufio.NewScanner(os.Stdin)
	if !in.Scan() {
		return
	}

	if mode == "exit" {
		return
	}

	turns := 0
	for {
		var height, width int
		if !in.Scan() {
			return
		}
		if _, err := fmt.Sscanf(in.Text(), "Plateau %d %d:", &height, &width); err != nil {
			return
		}
		for i := 0; i < height+1; i++ {
			in.Scan()
		}

		if !in.Scan() {
			return
		}
		if _, err := fmt.Sscanf(in.Text(), "Piece %d %d:", &height, &width); err != nil {
			return
		}
		for i := 0; i < height; i++ {
			in.Scan()
		}

		turns++

		switch mode {
		case "lagging":
			// the first answer comes late; every answer names its turn
			if turns == 1 {
				time.Sleep(300 * time.Millisecond)
			}
			fmt.Printf("helper 0 %d\n", turns)
		case "answer":
			fmt.Println("helper 1 2")
		case "garbage":
			fmt.Println("hello")
		case "silent":
		}
	}
}

func helperProcess(t *testing.T, mode string, timeout time.Duration) *Process {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	process, err := NewProcess(context.Background(), logger, ProcessConfig{
		Path:    os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess"},
		Env:     []string{helperEnv + "=" + mode},
		Timeout: timeout,
		Player:  entity.Player1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = process.Close()
	})

	return process
}

func turn(t *testing.T) (*plateau.Plateau, entity.Piece) {
	t.Helper()

	board, err := plateau.New(4, 4, entity.NewPoint(1, 1), entity.NewPoint(3, 3))
	require.NoError(t, err)
	piece, err := entity.NewPiece(2, 1, []bool{true, true})
	require.NoError(t, err)

	return board, piece
}

func TestProcess_RequestPlacement(t *testing.T) {
	t.Run("Parses the answer", func(t *testing.T) {
		// Given: an agent answering every turn
		process := helperProcess(t, "answer", 5*time.Second)
		board, piece := turn(t)

		// When: two turns are requested
		first := process.RequestPlacement(context.Background(), board, piece)
		second := process.RequestPlacement(context.Background(), board, piece)

		// Then: both carry the parsed anchor and the raw line
		for _, response := range []entity.PlayerResponse{first, second} {
			require.NoError(t, response.Err)
			assert.Equal(t, "helper 1 2", response.RawResponse)
			assert.Equal(t, entity.NewPoint(1, 2), *response.Placement)
			assert.Equal(t, piece, response.Piece)
		}
	})

	t.Run("Times out", func(t *testing.T) {
		// Given: an agent that never answers
		process := helperProcess(t, "silent", 100*time.Millisecond)
		board, piece := turn(t)

		// When: a turn is requested
		response := process.RequestPlacement(context.Background(), board, piece)

		// Then: the turn fails with a timeout
		assert.ErrorIs(t, response.Err, ErrTimeout)
		assert.Nil(t, response.Placement)
	})

	t.Run("Late answer is not taken for the next turn", func(t *testing.T) {
		// Given: an agent whose first answer arrives after that turn was given up
		process := helperProcess(t, "lagging", 5*time.Second)
		board, piece := turn(t)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		first := process.RequestPlacement(ctx, board, piece)
		require.Error(t, first.Err)

		// When: the next turn is requested before the late answer shows up
		second := process.RequestPlacement(context.Background(), board, piece)

		// Then: the late answer is skipped and the second turn gets its own answer
		require.NoError(t, second.Err)
		assert.Equal(t, "helper 0 2", second.RawResponse)
		assert.Equal(t, entity.NewPoint(0, 2), *second.Placement)
	})

	t.Run("Malformed answer", func(t *testing.T) {
		process := helperProcess(t, "garbage", 5*time.Second)
		board, piece := turn(t)

		response := process.RequestPlacement(context.Background(), board, piece)

		assert.ErrorIs(t, response.Err, ErrMalformedResponse)
		assert.Equal(t, "hello", response.RawResponse)
	})

	t.Run("Exited process is unreachable", func(t *testing.T) {
		// Given: an agent that quits after the handshake
		process := helperProcess(t, "exit", 5*time.Second)
		board, piece := turn(t)

		select {
		case <-process.exited:
		case <-time.After(5 * time.Second):
			t.Fatal("helper did not exit")
		}

		// When: a turn is requested
		response := process.RequestPlacement(context.Background(), board, piece)

		// Then: the agent is reported unreachable
		assert.ErrorIs(t, response.Err, ErrUnreachable)
	})
}

func TestNewProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Rejects an empty path", func(t *testing.T) {
		_, err := NewProcess(context.Background(), logger, ProcessConfig{Player: entity.Player1})

		assert.ErrorIs(t, err, ErrNoExecutable)
	})

	t.Run("Fails on a missing executable", func(t *testing.T) {
		_, err := NewProcess(context.Background(), logger, ProcessConfig{
			Path:   "/nonexistent/filler-agent",
			Player: entity.Player1,
		})

		assert.ErrorIs(t, err, ErrUnreachable)
	})

	t.Run("Names the agent after the executable", func(t *testing.T) {
		process := helperProcess(t, "answer", time.Second)

		assert.NotEmpty(t, process.Name())
		assert.Equal(t, entity.Player1, process.Player())
	})
}
