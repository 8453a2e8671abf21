package apperror

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoAgent        = errors.New("player1 agent is required")
	ErrReplayNotFound = errors.New("replay not found")
)
