package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotGameOwner   = errors.New("player does not own this game")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrNotPlayerTurn     = errors.New("not this player's turn")
	ErrAITurnPending     = errors.New("ai move is still being computed")
	ErrGameComplete      = errors.New("game is already complete")
	ErrGameAbandoned     = errors.New("game has been abandoned")
	ErrInvalidBoardSize  = errors.New("invalid board size")
	ErrUnknownStrategy   = errors.New("unknown bot strategy")
	ErrInvalidPosition   = errors.New("invalid board position")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrNoMoveAvailable   = errors.New("no move available")

	// Board errors
	ErrBoardNotFound = errors.New("board not found")
)
