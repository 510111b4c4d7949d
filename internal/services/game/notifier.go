package game

import "github.com/mcoot/gomoku-go/internal/model"

// Notifier receives game events. Publish is called with the game lock held,
// so implementations must not block or call back into the controller.
type Notifier interface {
	Publish(event model.Event)
}

// NopNotifier discards every event
type NopNotifier struct{}

func (NopNotifier) Publish(model.Event) {}
