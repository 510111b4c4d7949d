package bot

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/scoring"
)

// HeuristicStrategy plays either its own best line or a block of the
// opponent's best line, whichever scores higher. There is no look-ahead.
type HeuristicStrategy struct {
	scorer scoring.ServiceInterface
}

// NewHeuristicStrategy creates a strategy backed by the given scorer
func NewHeuristicStrategy(scorer scoring.ServiceInterface) *HeuristicStrategy {
	return &HeuristicStrategy{scorer: scorer}
}

// BestCandidates scores every empty cell for both colours in row-major order
// and returns the highest-scoring cell for each. Ties keep the first found.
// Both candidates are unfound (model.NoScore) on a full board.
func (s *HeuristicStrategy) BestCandidates(board *model.Board, stone model.Stone) (opponent, own model.CandidateMove) {
	opponent = model.NewCandidateMove()
	own = model.NewCandidateMove()
	other := stone.Opponent()

	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			pos := model.Position{Row: row, Col: col}
			if board.At(pos) != model.StoneEmpty {
				continue
			}
			if score := s.scorer.Score(board, pos, other); score > opponent.Score {
				opponent = model.CandidateMove{Position: pos, Score: score}
			}
			if score := s.scorer.Score(board, pos, stone); score > own.Score {
				own = model.CandidateMove{Position: pos, Score: score}
			}
		}
	}
	return opponent, own
}

// ChooseMove takes the opponent's best cell only when it strictly outscores
// the strategy's own best cell
func (s *HeuristicStrategy) ChooseMove(_ context.Context, board *model.Board, stone model.Stone) (model.Position, error) {
	opponent, own := s.BestCandidates(board, stone)
	if !own.Found() {
		return model.Position{}, model.ErrNoMoveAvailable
	}
	if opponent.Score > own.Score {
		return opponent.Position, nil
	}
	return own.Position, nil
}
