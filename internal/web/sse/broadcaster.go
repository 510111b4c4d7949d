package sse

import (
	"log/slog"

	"github.com/mcoot/gomoku-go/internal/model"
)

// Broadcaster publishes game events to the game's SSE hub.
// It implements game.Notifier and never blocks the caller.
type Broadcaster struct {
	manager  *HubManager
	renderer *Renderer
	logger   *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(manager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		manager:  manager,
		renderer: NewRenderer(),
		logger:   logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends the event to everyone watching the game
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.manager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	name, data, err := b.renderer.Render(event)
	if err != nil {
		b.logger.Error("failed to render event",
			slog.String("game_id", string(event.GameID)),
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(name, data)
}
