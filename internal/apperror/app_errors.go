package apperror

import "errors"

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrGameFinished = errors.New("game is already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrNotFound     = errors.New("not found")
	ErrCorrupted    = errors.New("record is corrupted")
)
