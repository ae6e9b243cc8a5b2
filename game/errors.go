package game

import "errors"

var (
	// ErrInvalidOperation means the room's current state does not
	// permit the requested move. The room is left untouched.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidDoorIndex means a door number fell outside [0, doors).
	ErrInvalidDoorIndex = errors.New("invalid door index")

	// ErrInvalidSettings means doors < 2 or rounds < 1.
	ErrInvalidSettings = errors.New("invalid settings")
)
