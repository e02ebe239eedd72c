package apperror

import "errors"

var (
	ErrGameFinished   = errors.New("game is already over")
	ErrGameNotStarted = errors.New("game not started yet")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrOutOfBounds    = errors.New("coordinates out of bounds")
	ErrCellOccupied   = errors.New("cell is already occupied")

	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrGameEnded    = errors.New("game already ended")
	ErrNotInRoom    = errors.New("not in a room")
	ErrInvalidToken = errors.New("invalid player token")
)
