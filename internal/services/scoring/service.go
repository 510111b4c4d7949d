package scoring

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/mcoot/gomoku-go/internal/model"
)

// ErrInvalidScorerConfig is returned when a direction score could overflow
// its digit in the combined score
var ErrInvalidScorerConfig = errors.New("invalid scorer config")

// Axis indexes a line direction in model.DirectionScores
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
	AxisDiagonal     // top-left to bottom-right
	AxisAntiDiagonal // bottom-left to top-right
)

// step is the unit vector walked in the positive direction of each axis
var step = [model.AxisCount]model.Position{
	AxisVertical:     {Row: 1, Col: 0},
	AxisHorizontal:   {Row: 0, Col: 1},
	AxisDiagonal:     {Row: 1, Col: 1},
	AxisAntiDiagonal: {Row: -1, Col: 1},
}

func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	case AxisDiagonal:
		return "diagonal"
	case AxisAntiDiagonal:
		return "anti_diagonal"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Config controls the move scorer
type Config struct {
	// Reach is how many cells are scanned on each side of the target
	Reach int

	// WinLength is the number of usable cells a line needs to be worth anything
	WinLength int

	// Base is the radix used to fold direction scores into one number.
	// Every direction score must be a single digit in this base.
	Base int

	// ScoreDiagonals enables the diagonal axes. When false they always score 0.
	ScoreDiagonals bool
}

// DefaultConfig scores only the vertical and horizontal axes
func DefaultConfig() Config {
	return Config{
		Reach:          4,
		WinLength:      model.WinLength,
		Base:           10,
		ScoreDiagonals: false,
	}
}

// Service computes how desirable an empty cell is for a colour
type Service struct {
	cfg Config
}

// New validates the config and creates a scorer.
// The largest direction score is 2*Reach (both half-scans full of own
// stones), which has to fit in one digit of Base.
func New(cfg Config) (*Service, error) {
	if cfg.Reach <= 0 || cfg.WinLength <= 0 || cfg.Base < 2 {
		return nil, fmt.Errorf("%w: reach=%d win_length=%d base=%d",
			ErrInvalidScorerConfig, cfg.Reach, cfg.WinLength, cfg.Base)
	}
	if 2*cfg.Reach >= cfg.Base {
		return nil, fmt.Errorf("%w: max direction score %d does not fit base %d",
			ErrInvalidScorerConfig, 2*cfg.Reach, cfg.Base)
	}
	return &Service{cfg: cfg}, nil
}

// Config returns the scorer's settings
func (s *Service) Config() Config {
	return s.cfg
}

// DirectionScores returns the unsorted per-axis scores for placing stone at pos
func (s *Service) DirectionScores(board *model.Board, pos model.Position, stone model.Stone) model.DirectionScores {
	var scores model.DirectionScores
	for axis := AxisVertical; axis <= AxisAntiDiagonal; axis++ {
		if !s.cfg.ScoreDiagonals && (axis == AxisDiagonal || axis == AxisAntiDiagonal) {
			continue
		}
		scores[axis] = s.axisScore(board, pos, stone, step[axis])
	}
	return scores
}

// Score returns the combined score for placing stone at pos
func (s *Service) Score(board *model.Board, pos model.Position, stone model.Stone) int {
	return s.Combine(s.DirectionScores(board, pos, stone))
}

// ScoreCell returns the full breakdown for placing stone at pos
func (s *Service) ScoreCell(board *model.Board, pos model.Position, stone model.Stone) model.CellScore {
	directions := s.DirectionScores(board, pos, stone)
	return model.CellScore{
		Position:   pos,
		Stone:      stone,
		Directions: directions,
		Combined:   s.Combine(directions),
	}
}

// Combine sorts the direction scores descending and folds them as digits,
// most significant first, so the single strongest line always dominates.
func (s *Service) Combine(scores model.DirectionScores) int {
	sorted := scores
	slices.SortFunc(sorted[:], func(a, b int) int { return cmp.Compare(b, a) })

	combined := 0
	for _, digit := range sorted {
		combined = combined*s.cfg.Base + digit
	}
	return combined
}

// axisScore scans up to Reach cells either side of pos along dir. Both
// half-scans stop at the edge or an opposing stone and share one pair of
// counters. The line only counts if it has room for WinLength stones.
func (s *Service) axisScore(board *model.Board, pos model.Position, stone model.Stone, dir model.Position) int {
	sameCount, emptyCount := 0, 0
	for _, sign := range [2]int{-1, 1} {
		for i := 1; i <= s.cfg.Reach; i++ {
			cur := model.Position{Row: pos.Row + sign*i*dir.Row, Col: pos.Col + sign*i*dir.Col}
			if !board.IsValidPosition(cur) {
				break
			}
			occupant := board.At(cur)
			if occupant == stone {
				sameCount++
			} else if occupant == model.StoneEmpty {
				emptyCount++
			} else {
				break
			}
		}
	}
	if sameCount+emptyCount >= s.cfg.WinLength {
		return sameCount
	}
	return 0
}

// ServiceInterface is the scorer behaviour the bot strategies depend on
type ServiceInterface interface {
	DirectionScores(board *model.Board, pos model.Position, stone model.Stone) model.DirectionScores
	Score(board *model.Board, pos model.Position, stone model.Stone) int
	ScoreCell(board *model.Board, pos model.Position, stone model.Stone) model.CellScore
	Combine(scores model.DirectionScores) int
}

var _ ServiceInterface = (*Service)(nil)
