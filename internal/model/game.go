package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStateHumanTurn  GameState = "human_turn"  // Waiting for the human to place a stone
	GameStateAIThinking GameState = "ai_thinking" // AI move is being computed
	GameStateWon        GameState = "won"         // A player made five in a row
	GameStateDrawn      GameState = "drawn"       // No move available
	GameStateAbandoned  GameState = "abandoned"   // Human resigned
)

// Board size limits accepted when creating a game
const (
	MinBoardSize = 5
	MaxBoardSize = 25
)

// WinLength is the number of stones in a row needed to win
const WinLength = 5

// Game is a single human-versus-AI match
type Game struct {
	ID        GameID
	PlayerID  PlayerID // The human player
	State     GameState
	BoardSize int

	HumanStone Stone
	AIStone    Stone
	Strategy   string // Bot strategy name for the AI side

	MoveCount int
	LastMove  *Move
	Winner    Stone // StoneEmpty unless State is won

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Move records one placement
type Move struct {
	Position Position
	Stone    Stone
	Number   int // 1-indexed move number within the game
}

// IsFinished returns true once the game can no longer be played
func (g *Game) IsFinished() bool {
	switch g.State {
	case GameStateWon, GameStateDrawn, GameStateAbandoned:
		return true
	default:
		return false
	}
}

// HumanWon returns true if the human made five in a row
func (g *Game) HumanWon() bool {
	return g.State == GameStateWon && g.Winner == g.HumanStone
}

// GameOptions are the choices made when starting a game
type GameOptions struct {
	BoardSize int
	Strategy  string
	AIFirst   bool // AI opens with black
}
