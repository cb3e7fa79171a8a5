package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who a transcript message belongs to
type Sender string

const (
	// SenderUser represents a message typed by the user
	SenderUser Sender = "user"
	// SenderBot represents a message produced by the backend or the widget itself
	SenderBot Sender = "bot"
)

// Message represents a single rendered chat message
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Pending   bool      `json:"pending,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewTypingIndicator creates the placeholder shown while a reply is pending
func NewTypingIndicator(text string) Message {
	m := NewMessage(SenderBot, text)
	m.Pending = true
	return m
}

// IsUser reports whether the message was typed by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}
