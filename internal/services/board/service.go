package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// axes are the four line directions through a cell. Each is walked forwards
// and backwards, so one vector per axis is enough.
var axes = [4]model.Position{
	{Row: 1, Col: 0},  // vertical
	{Row: 0, Col: 1},  // horizontal
	{Row: 1, Col: 1},  // main diagonal
	{Row: 1, Col: -1}, // anti-diagonal
}

// Service provides board operations. It is the validation boundary in front
// of model.Board, whose mutators panic on contract violations.
type Service struct {
	storage storage.BoardStore
	logger  *slog.Logger
}

// New creates a new board Service
func New(storage storage.BoardStore, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With("component", "board"),
	}
}

// CreateBoard initializes and persists an empty board for a game
func (s *Service) CreateBoard(ctx context.Context, gameID model.GameID, size int) (*model.Board, error) {
	if size < model.MinBoardSize || size > model.MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidBoardSize, size)
	}
	board := model.NewBoard(gameID, size)
	if err := s.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard retrieves the board for a game
func (s *Service) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	return s.storage.GetBoard(ctx, gameID)
}

// SaveBoard stores a board as-is, replacing the game's current one
func (s *Service) SaveBoard(ctx context.Context, board *model.Board) error {
	return s.storage.SaveBoard(ctx, board)
}

// PlaceStone validates and applies a placement, then persists the board
func (s *Service) PlaceStone(ctx context.Context, board *model.Board, pos model.Position, stone model.Stone) error {
	if err := s.ValidatePlacement(board, pos); err != nil {
		return err
	}
	board.PlaceStone(pos, stone)

	s.logger.Debug("stone placed",
		"game_id", board.GameID,
		"position", pos.String(),
		"stone", stone.String(),
	)
	return s.storage.SaveBoard(ctx, board)
}

// ValidatePlacement checks if a position is valid and empty
func (s *Service) ValidatePlacement(board *model.Board, pos model.Position) error {
	if !board.IsValidPosition(pos) {
		return model.ErrInvalidPosition
	}
	if !board.IsEmpty(pos) {
		return model.ErrCellOccupied
	}
	return nil
}

// IsWinningMove reports whether the stone at pos completes a line of at least
// model.WinLength on any axis, diagonals included.
func (s *Service) IsWinningMove(board *model.Board, pos model.Position) bool {
	return IsWinningMove(board, pos)
}

// IsFull checks if every cell is occupied
func (s *Service) IsFull(board *model.Board) bool {
	return board.IsFull()
}

// IsWinningMove is the storage-free form of Service.IsWinningMove
func IsWinningMove(board *model.Board, pos model.Position) bool {
	if !board.IsValidPosition(pos) {
		return false
	}
	stone := board.At(pos)
	if stone == model.StoneEmpty {
		return false
	}
	for _, dir := range axes {
		run := 1 + countRun(board, pos, dir, stone) + countRun(board, pos, model.Position{Row: -dir.Row, Col: -dir.Col}, stone)
		if run >= model.WinLength {
			return true
		}
	}
	return false
}

// countRun counts consecutive stones of the given colour starting one step
// from pos in direction dir.
func countRun(board *model.Board, pos, dir model.Position, stone model.Stone) int {
	count := 0
	cur := model.Position{Row: pos.Row + dir.Row, Col: pos.Col + dir.Col}
	for board.IsValidPosition(cur) && board.At(cur) == stone {
		count++
		cur = model.Position{Row: cur.Row + dir.Row, Col: cur.Col + dir.Col}
	}
	return count
}

// ServiceInterface is the board behaviour the game controller depends on
type ServiceInterface interface {
	CreateBoard(ctx context.Context, gameID model.GameID, size int) (*model.Board, error)
	GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error)
	SaveBoard(ctx context.Context, board *model.Board) error
	PlaceStone(ctx context.Context, board *model.Board, pos model.Position, stone model.Stone) error
	ValidatePlacement(board *model.Board, pos model.Position) error
	IsWinningMove(board *model.Board, pos model.Position) bool
	IsFull(board *model.Board) bool
}

var _ ServiceInterface = (*Service)(nil)
