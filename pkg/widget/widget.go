// Package widget implements the chat widget controller: it turns user
// actions into backend calls and renders the outcome into the transcript.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/andrew/ragchat/pkg/backend"
	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/models"
)

// ErrBusy is returned when an action arrives while a backend call is still
// outstanding.
var ErrBusy = errors.New("widget: request already in flight")

// Input is the text field the user types into
type Input interface {
	Value() string
	Clear()
}

// Messages is the container the transcript is rendered into
type Messages interface {
	Append(m models.Message)
	Remove(id string) bool
	ScrollToLatest()
}

// Dialogs asks the user blocking questions
type Dialogs interface {
	// Confirm returns true if the user accepted
	Confirm(ctx context.Context, prompt string) bool
	// Notify shows an informational message and returns once it was acknowledged
	Notify(ctx context.Context, text string)
}

// Controller is one mounted chat widget
type Controller struct {
	input    Input
	messages Messages
	backend  backend.Client
	dialogs  Dialogs
	text     *locale.Catalog
	logger   zerolog.Logger

	inFlight atomic.Bool
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger used for transport diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithCatalog sets the language of the widget's own messages
func WithCatalog(cat *locale.Catalog) Option {
	return func(c *Controller) {
		c.text = cat
	}
}

// New mounts a widget on the given view elements
func New(input Input, messages Messages, client backend.Client, dialogs Dialogs, opts ...Option) (*Controller, error) {
	c := &Controller{
		input:    input,
		messages: messages,
		backend:  client,
		dialogs:  dialogs,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.text == nil {
		cat, err := locale.New("")
		if err != nil {
			return nil, err
		}
		c.text = cat
	}
	return c, nil
}

// Busy reports whether a backend call is outstanding
func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

// SendMessage sends the current input to /chat and renders the reply.
// Empty input is ignored.
func (c *Controller) SendMessage(ctx context.Context) error {
	text := strings.TrimSpace(c.input.Value())
	if text == "" {
		return nil
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	c.append(models.NewMessage(models.SenderUser, text))
	c.input.Clear()

	indicator := models.NewTypingIndicator(c.text.Text(locale.Thinking))
	c.append(indicator)

	reply, err := c.backend.Chat(ctx, text)
	c.messages.Remove(indicator.ID)

	if err != nil {
		c.append(models.NewMessage(models.SenderBot, c.chatErrorText(err)))
		return nil
	}
	c.append(models.NewMessage(models.SenderBot, reply))
	return nil
}

func (c *Controller) chatErrorText(err error) string {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		c.logger.Debug().Err(err).Int("status", statusErr.StatusCode).Msg("chat request rejected")
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return c.text.Text(locale.ChatFailed)
	}

	c.logger.Warn().Err(err).Msg("error sending message")
	return c.text.Text(locale.NetworkError)
}

// ClearDatabase asks for confirmation, then wipes the backend's store.
// Declining is a silent no-op.
func (c *Controller) ClearDatabase(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	if !c.dialogs.Confirm(ctx, c.text.Text(locale.ConfirmClear)) {
		return nil
	}

	c.append(models.NewMessage(models.SenderBot, c.text.Text(locale.Clearing)))

	res, err := c.backend.ClearDatabase(ctx)
	if err != nil {
		var statusErr *backend.StatusError
		if !errors.As(err, &statusErr) {
			c.logger.Warn().Err(err).Msg("error clearing database")
			c.append(models.NewMessage(models.SenderBot, c.text.Text(locale.ClearNetworkError)))
			return nil
		}

		detail := statusErr.Message
		if detail == "" {
			detail = c.text.Text(locale.UnknownError)
		}
		c.logger.Debug().Err(err).Int("status", statusErr.StatusCode).Msg("clear database rejected")
		c.append(models.NewMessage(models.SenderBot, c.text.Text(locale.ClearFailed, detail)))
		return nil
	}

	c.logger.Info().Str("status", res.Status).Msg("database cleared")
	c.append(models.NewMessage(models.SenderBot, c.text.Text(locale.Cleared, res.Message)))
	c.dialogs.Notify(ctx, c.text.Text(locale.RestartNotice))
	return nil
}

func (c *Controller) append(m models.Message) {
	c.messages.Append(m)
	c.messages.ScrollToLatest()
}
