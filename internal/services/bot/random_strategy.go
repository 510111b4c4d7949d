package bot

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/model"
)

// RandomStrategy picks a uniformly random empty cell
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseMove picks a random empty cell on the board
func (s *RandomStrategy) ChooseMove(_ context.Context, board *model.Board, _ model.Stone) (model.Position, error) {
	empty := make([]model.Position, 0, board.EmptyCount())
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			pos := model.Position{Row: row, Col: col}
			if board.At(pos) == model.StoneEmpty {
				empty = append(empty, pos)
			}
		}
	}
	if len(empty) == 0 {
		return model.Position{}, model.ErrNoMoveAvailable
	}
	return empty[s.random.Intn(len(empty))], nil
}
