package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Defaults fill everything but the players", func(t *testing.T) {
		// Given: a config naming only the first player
		path := writeConfig(t, "match:\n  player1: ./bots/alice\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: the defaults are applied
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "./bots/alice", conf.Match.Player1)
		assert.Empty(t, conf.Match.Player2)
		assert.Equal(t, 2*time.Second, conf.Match.Timeout)
		assert.Equal(t, 6, conf.Match.ErrorThreshold)
		assert.Equal(t, 0, conf.Match.MaxMoves)
		assert.Equal(t, Plateau{Width: 50, Height: 50, Player1X: 5, Player1Y: 5, Player2X: 44, Player2Y: 44}, conf.Match.Plateau)
		assert.Equal(t, 5, conf.Match.Pieces.MinWidth)
		assert.Equal(t, 7, conf.Match.Pieces.MaxHeight)
		assert.False(t, conf.Redis.Enabled)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.Redis.TTL)
	})

	t.Run("File values override defaults", func(t *testing.T) {
		// Given: a config with explicit values
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
match:
  player1: random
  player2: ./bots/bob
  timeout: 500ms
  error-threshold: 3
  verbose: true
  plateau:
    width: 20
    height: 10
redis:
  enabled: true
  host: redis
  port: "6380"
`)

		// When: it is loaded
		conf := MustLoad(path)

		// Then: the file wins
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, 500*time.Millisecond, conf.Match.Timeout)
		assert.Equal(t, 3, conf.Match.ErrorThreshold)
		assert.True(t, conf.Match.Verbose)
		assert.Equal(t, 20, conf.Match.Plateau.Width)
		assert.Equal(t, 10, conf.Match.Plateau.Height)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Explicit zeros are kept", func(t *testing.T) {
		// Given: a start in the corner and a redis ttl that never expires
		path := writeConfig(t, `
match:
  player1: random
  plateau:
    width: 10
    height: 10
    player1-x: 0
    player1-y: 0
    player2-x: 9
    player2-y: 9
redis:
  ttl: 0s
`)

		// When: it is loaded
		conf := MustLoad(path)

		// Then: the zeros are not replaced by defaults
		assert.Equal(t, Plateau{Width: 10, Height: 10, Player1X: 0, Player1Y: 0, Player2X: 9, Player2Y: 9}, conf.Match.Plateau)
		assert.Equal(t, time.Duration(0), conf.Redis.TTL)
	})

	t.Run("Partial plateau keeps the other start defaults", func(t *testing.T) {
		// Given: only player1-x is set
		path := writeConfig(t, "match:\n  player1: random\n  plateau:\n    player1-x: 0\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: the unset coordinates keep their defaults
		assert.Equal(t, 0, conf.Match.Plateau.Player1X)
		assert.Equal(t, DefaultPlayer1Start, conf.Match.Plateau.Player1Y)
		assert.Equal(t, DefaultPlayer2Start, conf.Match.Plateau.Player2X)
		assert.Equal(t, DefaultPlayer2Start, conf.Match.Plateau.Player2Y)
	})

	t.Run("Missing file panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})

	t.Run("Invalid config panics", func(t *testing.T) {
		path := writeConfig(t, "log-level: info\n")

		assert.Panics(t, func() {
			MustLoad(path)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Match: Match{
				Player1:        "random",
				Timeout:        time.Second,
				ErrorThreshold: 6,
				Plateau:        Plateau{Width: 50, Height: 50},
				Pieces:         Pieces{MinWidth: 5, MaxWidth: 7, MinHeight: 5, MaxHeight: 7},
			},
		}
	}

	t.Run("Valid config passes", func(t *testing.T) {
		conf := valid()
		assert.NoError(t, conf.Validate())
	})

	cases := map[string]func(*Config){
		"no player1":         func(c *Config) { c.Match.Player1 = "" },
		"zero timeout":       func(c *Config) { c.Match.Timeout = 0 },
		"zero threshold":     func(c *Config) { c.Match.ErrorThreshold = 0 },
		"negative max moves": func(c *Config) { c.Match.MaxMoves = -1 },
		"empty plateau":      func(c *Config) { c.Match.Plateau.Width = 0 },
		"inverted widths":    func(c *Config) { c.Match.Pieces.MinWidth = 8 },
		"zero piece height":  func(c *Config) { c.Match.Pieces.MinHeight = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			// Given: a config broken in one place
			conf := valid()
			mutate(&conf)

			// When: it is validated
			err := conf.Validate()

			// Then: it is rejected
			assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
		})
	}
}
