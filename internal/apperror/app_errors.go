package apperror

import "errors"

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrGameFinished = errors.New("game is already finished")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")

	ErrNoLegalMove        = errors.New("no legal move left for computer")
	ErrComputerTurnNotDue = errors.New("computer turn is not due")
	ErrStaleComputerTurn  = errors.New("computer turn is stale")

	ErrUnknownMode = errors.New("unknown game mode")
)
