// Package transcript holds the ordered, display-only list of chat messages
// for a single widget session.
package transcript

import (
	"sync"

	"github.com/andrew/ragchat/pkg/models"
)

// Transcript is an append-only message list. Only pending messages (typing
// indicators) can be removed. It is safe for concurrent use.
type Transcript struct {
	mu        sync.RWMutex
	messages  []models.Message
	follow    bool
	listeners []func()
}

// New creates an empty transcript that follows the latest message
func New() *Transcript {
	return &Transcript{follow: true}
}

// Append adds a message to the end of the transcript
func (t *Transcript) Append(m models.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
	t.notify()
}

// Remove deletes the pending message with the given ID. Settled messages are
// immutable once rendered, so Remove reports false for them.
func (t *Transcript) Remove(id string) bool {
	t.mu.Lock()
	removed := false
	for i, m := range t.messages {
		if m.ID != id {
			continue
		}
		if !m.Pending {
			break
		}
		t.messages = append(t.messages[:i], t.messages[i+1:]...)
		removed = true
		break
	}
	t.mu.Unlock()

	if removed {
		t.notify()
	}
	return removed
}

// ScrollToLatest marks the view as following the newest message
func (t *Transcript) ScrollToLatest() {
	t.mu.Lock()
	t.follow = true
	t.mu.Unlock()
	t.notify()
}

// SetFollowing is called by renderers when the user scrolls away from the
// end or back to it. It does not notify listeners.
func (t *Transcript) SetFollowing(follow bool) {
	t.mu.Lock()
	t.follow = follow
	t.mu.Unlock()
}

// Following reports whether renderers should keep the newest message in view
func (t *Transcript) Following() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.follow
}

// Messages returns a snapshot of the transcript in display order
func (t *Transcript) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages, including any typing indicator
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// PendingCount returns how many typing indicators are currently shown
func (t *Transcript) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, m := range t.messages {
		if m.Pending {
			n++
		}
	}
	return n
}

// Last returns the most recent message, if any
func (t *Transcript) Last() (models.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return models.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Subscribe registers fn to be called after every change. Listeners run on
// the goroutine that made the change and must not block.
func (t *Transcript) Subscribe(fn func()) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

func (t *Transcript) notify() {
	t.mu.RLock()
	listeners := make([]func(), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
