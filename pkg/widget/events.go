package widget

import (
	"context"
	"sync"
)

// Action names a user-facing widget action
type Action string

const (
	// ActionSend is the send button
	ActionSend Action = "send"
	// ActionKeyPress is a key pressed in the input field
	ActionKeyPress Action = "keypress"
	// ActionClearDatabase is the clear-database button
	ActionClearDatabase Action = "clear_db"
)

// KeyEnter is the key that submits the input
const KeyEnter = "Enter"

// Event is one occurrence of an action. Key is set for ActionKeyPress.
type Event struct {
	Action Action
	Key    string
}

// Handler reacts to an event
type Handler func(ctx context.Context, ev Event) error

// Bus routes events to the handlers registered for their action
type Bus struct {
	mu       sync.RWMutex
	handlers map[Action][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[Action][]Handler)}
}

// On registers h for action
func (b *Bus) On(action Action, h Handler) {
	b.mu.Lock()
	b.handlers[action] = append(b.handlers[action], h)
	b.mu.Unlock()
}

// Dispatch runs every handler for ev.Action in registration order and
// returns the first error.
func (b *Bus) Dispatch(ctx context.Context, ev Event) error {
	b.mu.RLock()
	handlers := b.handlers[ev.Action]
	b.mu.RUnlock()

	var first error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Bind wires the widget's actions to its operations
func (c *Controller) Bind(bus *Bus) {
	bus.On(ActionSend, func(ctx context.Context, _ Event) error {
		return c.SendMessage(ctx)
	})
	bus.On(ActionKeyPress, func(ctx context.Context, ev Event) error {
		if ev.Key != KeyEnter {
			return nil
		}
		return c.SendMessage(ctx)
	})
	bus.On(ActionClearDatabase, func(ctx context.Context, _ Event) error {
		return c.ClearDatabase(ctx)
	})
}
