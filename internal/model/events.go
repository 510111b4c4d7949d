package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventStonePlaced EventType = "stone_placed"
	EventAIThinking  EventType = "ai_thinking"
	EventGameOver    EventType = "game_over"
)

// Event is the base structure for all game events
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	Payload   any // Type-specific data
}

// StonePlacedPayload is emitted exactly once per placement, human or AI
type StonePlacedPayload struct {
	Position Position
	Stone    Stone
	ByAI     bool
	Number   int
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	State  GameState
	Winner Stone // StoneEmpty for a draw or abandonment
}
