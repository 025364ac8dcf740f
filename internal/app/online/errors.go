package online

import (
	"errors"

	"buttonblitz/internal/ports"
)

var (
	ErrRoomNotFound    = ports.ErrRoomNotFound
	ErrInvalidCode     = errors.New("room code must be 4 letters or digits")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomStarted     = errors.New("room has already started")
	ErrNotHost         = errors.New("only the host can do that")
	ErrNotInRoom       = errors.New("not in this room")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrNotPlaying      = errors.New("room is not playing")
	ErrNotFinished     = errors.New("room has not finished")
	ErrStaleRound      = errors.New("round already over")
	ErrPlayerOut       = errors.New("player is out")
	ErrInvalidSettings = errors.New("invalid room settings")
	ErrCodeExhausted   = errors.New("could not allocate a free room code")
	ErrBusy            = errors.New("room is busy, try again")
)
