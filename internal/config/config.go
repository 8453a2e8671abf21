package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/filler-arbiter/internal/apperror"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT"`
	ReplayPath string `yaml:"replay-path" env:"REPLAY_PATH"`
	// AllowedOrigins are the extra Origin headers accepted by the spectator websocket.
	AllowedOrigins []string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:","`
	Match          Match    `yaml:"match"`
	Redis          Redis    `yaml:"redis"`
}

type Match struct {
	Player1        string        `yaml:"player1" env:"MATCH_PLAYER1"`
	Player2        string        `yaml:"player2" env:"MATCH_PLAYER2"`
	Timeout        time.Duration `yaml:"timeout" env:"MATCH_TIMEOUT" env-default:"2s"`
	ErrorThreshold int           `yaml:"error-threshold" env:"MATCH_ERROR_THRESHOLD" env-default:"6"`
	Verbose        bool          `yaml:"verbose" env:"MATCH_VERBOSE" env-default:"false"`
	MaxMoves       int           `yaml:"max-moves" env:"MATCH_MAX_MOVES" env-default:"0"`
	Plateau        Plateau       `yaml:"plateau"`
	Pieces         Pieces        `yaml:"pieces"`
}

type Plateau struct {
	Width    int `yaml:"width" env-default:"50"`
	Height   int `yaml:"height" env-default:"50"`
	Player1X int `yaml:"player1-x"`
	Player1Y int `yaml:"player1-y"`
	Player2X int `yaml:"player2-x"`
	Player2Y int `yaml:"player2-y"`
}

type Pieces struct {
	MinWidth  int   `yaml:"min-width" env-default:"5"`
	MaxWidth  int   `yaml:"max-width" env-default:"7"`
	MinHeight int   `yaml:"min-height" env-default:"5"`
	MaxHeight int   `yaml:"max-height" env-default:"7"`
	Seed      int64 `yaml:"seed" env:"MATCH_PIECES_SEED" env-default:"0"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

// Defaults for fields where 0 is a meaningful value. They are set before the file is read
// because cleanenv treats a zero field as unset and would overwrite an explicit 0.
const (
	DefaultPlayer1Start = 5
	DefaultPlayer2Start = 44
	DefaultRedisTTL     = 24 * time.Hour
)

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{
		Match: Match{
			Plateau: Plateau{
				Player1X: DefaultPlayer1Start,
				Player1Y: DefaultPlayer1Start,
				Player2X: DefaultPlayer2Start,
				Player2Y: DefaultPlayer2Start,
			},
		},
		Redis: Redis{TTL: DefaultRedisTTL},
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("unable to use config file: %w", err))
	}

	return config
}

func (that *Config) Validate() error {
	match := that.Match

	if match.Player1 == "" {
		return fmt.Errorf("%w: match.player1 is required", apperror.ErrInvalidConfig)
	}

	if match.Timeout <= 0 {
		return fmt.Errorf("%w: match.timeout must be positive", apperror.ErrInvalidConfig)
	}

	if match.ErrorThreshold <= 0 {
		return fmt.Errorf("%w: match.error-threshold must be positive", apperror.ErrInvalidConfig)
	}

	if match.MaxMoves < 0 {
		return fmt.Errorf("%w: match.max-moves must not be negative", apperror.ErrInvalidConfig)
	}

	if match.Plateau.Width <= 0 || match.Plateau.Height <= 0 {
		return fmt.Errorf("%w: plateau size %dx%d", apperror.ErrInvalidConfig, match.Plateau.Width, match.Plateau.Height)
	}

	pieces := match.Pieces
	if pieces.MinWidth <= 0 || pieces.MinHeight <= 0 || pieces.MinWidth > pieces.MaxWidth || pieces.MinHeight > pieces.MaxHeight {
		return fmt.Errorf("%w: piece sizes %d-%d x %d-%d", apperror.ErrInvalidConfig,
			pieces.MinWidth, pieces.MaxWidth, pieces.MinHeight, pieces.MaxHeight)
	}

	if that.Redis.Enabled && that.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis.ttl must not be negative", apperror.ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
