package model

import "fmt"

// DefaultBoardSize is the side length of a standard board
const DefaultBoardSize = 20

// Stone is the occupancy of a single cell
type Stone int

const (
	StoneEmpty Stone = iota
	StoneBlack
	StoneWhite
)

// Opponent returns the other colour, or StoneEmpty for an empty cell
func (s Stone) Opponent() Stone {
	switch s {
	case StoneBlack:
		return StoneWhite
	case StoneWhite:
		return StoneBlack
	default:
		return StoneEmpty
	}
}

// String returns a lowercase label for the stone
func (s Stone) String() string {
	switch s {
	case StoneBlack:
		return "black"
	case StoneWhite:
		return "white"
	default:
		return "empty"
	}
}

// ParseStone converts a label produced by String back into a Stone
func ParseStone(label string) (Stone, error) {
	switch label {
	case "black":
		return StoneBlack, nil
	case "white":
		return StoneWhite, nil
	case "empty", "":
		return StoneEmpty, nil
	default:
		return StoneEmpty, fmt.Errorf("unknown stone %q", label)
	}
}

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top (y)
	Col int // 0-indexed from left (x)
}

// String formats the position as (col,row), matching x/y order
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Board is a fixed-size square grid of stones for a game
type Board struct {
	GameID GameID
	Size   int       // Grid dimension, fixed at construction
	Cells  [][]Stone // Row-major: Cells[row][col]
}

// NewBoard creates an empty board of the given size
func NewBoard(gameID GameID, size int) *Board {
	if size <= 0 {
		panic(fmt.Sprintf("board size must be positive, got %d", size))
	}
	cells := make([][]Stone, size)
	for i := range cells {
		cells[i] = make([]Stone, size)
	}
	return &Board{
		GameID: gameID,
		Size:   size,
		Cells:  cells,
	}
}

// At returns the stone at the given position.
// Panics if the position is out of bounds.
func (b *Board) At(pos Position) Stone {
	b.mustBeInBounds(pos)
	return b.Cells[pos.Row][pos.Col]
}

// PlaceStone puts a stone on an empty cell.
// The caller guarantees bounds and emptiness; violating either panics.
func (b *Board) PlaceStone(pos Position, stone Stone) {
	b.mustBeInBounds(pos)
	if stone == StoneEmpty {
		panic(fmt.Sprintf("cannot place an empty stone at %s", pos))
	}
	if b.Cells[pos.Row][pos.Col] != StoneEmpty {
		panic(fmt.Sprintf("cell %s is already occupied", pos))
	}
	b.Cells[pos.Row][pos.Col] = stone
}

// IsEmpty returns true if the position is in bounds and unoccupied
func (b *Board) IsEmpty(pos Position) bool {
	return b.IsValidPosition(pos) && b.Cells[pos.Row][pos.Col] == StoneEmpty
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

// IsFull returns true if all cells are occupied
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	count := 0
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col] == StoneEmpty {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy that shares no cells with the original
func (b *Board) Clone() *Board {
	cells := make([][]Stone, b.Size)
	for row := range cells {
		cells[row] = make([]Stone, b.Size)
		copy(cells[row], b.Cells[row])
	}
	return &Board{
		GameID: b.GameID,
		Size:   b.Size,
		Cells:  cells,
	}
}

func (b *Board) mustBeInBounds(pos Position) {
	if !b.IsValidPosition(pos) {
		panic(fmt.Sprintf("position %s out of bounds for %dx%d board", pos, b.Size, b.Size))
	}
}

// NoScore marks a candidate that has not been evaluated
const NoScore = -1

// CandidateMove is a scored cell under consideration as the next move
type CandidateMove struct {
	Position Position
	Score    int
}

// NewCandidateMove returns the "nothing found yet" candidate
func NewCandidateMove() CandidateMove {
	return CandidateMove{
		Position: Position{Row: -1, Col: -1},
		Score:    NoScore,
	}
}

// Found returns true if the candidate holds an evaluated cell
func (c CandidateMove) Found() bool {
	return c.Score != NoScore
}
