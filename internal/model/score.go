package model

// AxisCount is the number of line directions through a cell
const AxisCount = 4

// DirectionScores holds one score per axis in the order vertical,
// horizontal, main diagonal, anti-diagonal.
type DirectionScores [AxisCount]int

// CellScore is the scorer's breakdown for one colour at one cell
type CellScore struct {
	Position   Position
	Stone      Stone
	Directions DirectionScores
	Combined   int
}
