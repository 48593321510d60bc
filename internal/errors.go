package internal

import "errors"

// User-facing errors. Their text is sent verbatim in error_message.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrGameAlreadyStarted  = errors.New("the game has already started")
	ErrRoomFull            = errors.New("the room is full")
	ErrNotHost             = errors.New("only the host can do that")
	ErrTooFewPlayers       = errors.New("at least 3 players are needed")
	ErrNoCustomWords       = errors.New("add custom words first")
	ErrNoWords             = errors.New("no words available for this category")
	ErrInvalidPhase        = errors.New("that action is not allowed right now")
	ErrNotInRoom           = errors.New("you are not in this room")
	ErrUnknownSuspect      = errors.New("that player is not in this room")
	ErrInvalidName         = errors.New("player name must be 1-24 characters")
	ErrInvalidTimerAction  = errors.New("timer action must be start, stop or reset")
	ErrNoRoomCodeAvailable = errors.New("could not allocate a room code, try again")
)
