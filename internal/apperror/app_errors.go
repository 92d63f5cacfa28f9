package apperror

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotHost        = errors.New("only the host can start a match")
	ErrUnknownClient  = errors.New("client is not in a room")
	ErrMissingName    = errors.New("player name is required")
	ErrNoFreeRoomCode = errors.New("could not find a free room code")
)
