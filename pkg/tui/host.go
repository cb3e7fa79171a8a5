// Package tui hosts the chat widget in a full-screen terminal UI.
//
// The widget controller runs on command goroutines while bubbletea owns the
// screen, so Host bridges the two: it implements widget.Input and
// widget.Dialogs by exchanging messages with the running program.
package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/transcript"
	"github.com/andrew/ragchat/pkg/widget"
)

// Options configures the TUI
type Options struct {
	// Markdown renders bot replies with glamour
	Markdown bool
}

// Host is the bridge between a widget controller and the bubbletea program
type Host struct {
	tr   *transcript.Transcript
	text *locale.Catalog
	opts Options

	mu        sync.Mutex
	submitted string
	send      func(tea.Msg)
}

// NewHost creates a host rendering tr
func NewHost(tr *transcript.Transcript, text *locale.Catalog, opts Options) *Host {
	return &Host{
		tr:   tr,
		text: text,
		opts: opts,
		send: func(tea.Msg) {},
	}
}

// Value implements widget.Input. It returns the line submitted with Enter.
func (h *Host) Value() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.submitted
}

// Clear implements widget.Input
func (h *Host) Clear() {
	h.mu.Lock()
	value := h.submitted
	h.submitted = ""
	h.mu.Unlock()

	h.post(inputClearedMsg{value: value})
}

// Confirm implements widget.Dialogs with a modal y/n prompt
func (h *Host) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	h.post(dialogMsg{text: prompt, confirm: reply})

	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Notify implements widget.Dialogs with a modal notice
func (h *Host) Notify(ctx context.Context, text string) {
	ack := make(chan struct{})
	h.post(dialogMsg{text: text, ack: ack})

	select {
	case <-ack:
	case <-ctx.Done():
	}
}

func (h *Host) submit(value string) {
	h.mu.Lock()
	h.submitted = value
	h.mu.Unlock()
}

func (h *Host) post(msg tea.Msg) {
	h.mu.Lock()
	send := h.send
	h.mu.Unlock()
	send(msg)
}

// Run shows the UI until the user quits or ctx is cancelled. Actions are
// dispatched to bus on their own goroutines.
func (h *Host) Run(ctx context.Context, bus *widget.Bus) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, h, bus), tea.WithAltScreen(), tea.WithContext(ctx))

	h.mu.Lock()
	h.send = p.Send
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.send = func(tea.Msg) {}
		h.mu.Unlock()
	}()

	h.tr.Subscribe(func() { h.post(transcriptChangedMsg{}) })

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type transcriptChangedMsg struct{}

type inputClearedMsg struct {
	value string
}

// dialogMsg opens a modal. Exactly one of confirm and ack is set.
type dialogMsg struct {
	text    string
	confirm chan<- bool
	ack     chan struct{}
}

type dispatchDoneMsg struct {
	err error
}
