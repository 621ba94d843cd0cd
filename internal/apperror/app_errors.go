package apperror

import "errors"

var (
	ErrGameFinished        = errors.New("game is already finished")
	ErrSessionNotStarted   = errors.New("game not initialized")
	ErrConfigRejected      = errors.New("configuration rejected")
	ErrConfigLocked        = errors.New("configuration cannot change while a game is running")
	ErrIllegalMove         = errors.New("illegal move")
	ErrOutOfBounds         = errors.New("move is out of bounds")
	ErrCellOwnedByOpponent = errors.New("cannot place orb in a cell occupied by the opponent")
	ErrNotAITurn           = errors.New("current player is not an AI")
	ErrNoAvailableMoves    = errors.New("no available moves")
	ErrLogUnavailable      = errors.New("move log unavailable")
	ErrRunnerStopped       = errors.New("session runner stopped")
)
