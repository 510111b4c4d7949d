package bot

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/model"
)

// Strategy chooses where the AI places its next stone.
// Implementations only read the board they are given; it is a snapshot the
// caller will not mutate while the strategy runs.
type Strategy interface {
	// ChooseMove returns an empty cell for stone, or model.ErrNoMoveAvailable
	// when the board is full
	ChooseMove(ctx context.Context, board *model.Board, stone model.Stone) (model.Position, error)
}
