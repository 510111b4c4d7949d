package sse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
)

// PositionData is a board coordinate on the wire
type PositionData struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// EventData is the JSON body of every game event frame. Fields that do not
// apply to an event type are omitted.
type EventData struct {
	Type      string        `json:"type"`
	GameID    string        `json:"game_id"`
	Timestamp time.Time     `json:"timestamp"`
	Position  *PositionData `json:"position,omitempty"`
	Stone     string        `json:"stone,omitempty"`
	ByAI      bool          `json:"by_ai,omitempty"`
	Number    int           `json:"number,omitempty"`
	State     string        `json:"state,omitempty"`
	Winner    string        `json:"winner,omitempty"`
}

// Renderer turns model events into SSE event names and JSON data
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the SSE event name and data for an event
func (r *Renderer) Render(event model.Event) (string, string, error) {
	data := EventData{
		Type:      string(event.Type),
		GameID:    string(event.GameID),
		Timestamp: event.Timestamp,
	}

	switch p := event.Payload.(type) {
	case model.StonePlacedPayload:
		data.Position = &PositionData{Row: p.Position.Row, Col: p.Position.Col}
		data.Stone = p.Stone.String()
		data.ByAI = p.ByAI
		data.Number = p.Number
	case model.GameOverPayload:
		data.State = string(p.State)
		if p.Winner != model.StoneEmpty {
			data.Winner = p.Winner.String()
		}
	case nil:
	default:
		return "", "", fmt.Errorf("unsupported payload %T for event %s", p, event.Type)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return "", "", err
	}
	return string(event.Type), string(body), nil
}
