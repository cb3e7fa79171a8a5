// Package console hosts the chat widget on a plain line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/models"
	"github.com/andrew/ragchat/pkg/transcript"
	"github.com/andrew/ragchat/pkg/widget"
)

// Console commands
const (
	CommandExit  = "/exit"
	CommandClear = "/clear"
)

// Options configures a Console
type Options struct {
	// EchoUser prints user messages as they enter the transcript. Off for
	// interactive use, where the typed line is already on screen.
	EchoUser bool
	// AssumeYes answers every confirmation with yes
	AssumeYes bool
	NoColor   bool
}

// Console is a widget host reading lines from in and printing to out. It
// serves as the widget's input field, message container and dialogs.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
	tr      *transcript.Transcript
	text    *locale.Catalog
	opts    Options

	line string

	you, bot, muted, notice func(a ...interface{}) string
}

// New creates a console host over in/out rendering into tr
func New(in io.Reader, out io.Writer, tr *transcript.Transcript, text *locale.Catalog, opts Options) *Console {
	paint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if opts.NoColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.SprintFunc()
	}

	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
		tr:      tr,
		text:    text,
		opts:    opts,
		you:     paint(color.FgGreen, color.Bold),
		bot:     paint(color.FgCyan, color.Bold),
		muted:   paint(color.Faint),
		notice:  paint(color.FgYellow, color.Bold),
	}
}

// SetInput sets the text the next send will read
func (c *Console) SetInput(s string) {
	c.line = s
}

// Value implements widget.Input
func (c *Console) Value() string {
	return c.line
}

// Clear implements widget.Input
func (c *Console) Clear() {
	c.line = ""
}

// Append implements widget.Messages
func (c *Console) Append(m models.Message) {
	c.tr.Append(m)

	switch {
	case m.Pending:
		fmt.Fprintln(c.out, c.muted(m.Text))
	case m.IsUser():
		if c.opts.EchoUser {
			fmt.Fprintf(c.out, "%s %s\n", c.you(c.text.Text(locale.You)+":"), m.Text)
		}
	default:
		fmt.Fprintf(c.out, "%s %s\n\n", c.bot(c.text.Text(locale.Bot)+":"), m.Text)
	}
}

// Remove implements widget.Messages
func (c *Console) Remove(id string) bool {
	return c.tr.Remove(id)
}

// ScrollToLatest implements widget.Messages. A terminal always shows the
// latest line.
func (c *Console) ScrollToLatest() {
	c.tr.ScrollToLatest()
}

// Confirm implements widget.Dialogs by reading a y/N answer
func (c *Console) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", c.notice(prompt))
	if c.opts.AssumeYes {
		fmt.Fprintln(c.out, "y")
		return true
	}
	if ctx.Err() != nil || !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(c.scanner.Text())) {
	case "y", "yes", "አዎ":
		return true
	}
	return false
}

// Notify implements widget.Dialogs
func (c *Console) Notify(_ context.Context, text string) {
	fmt.Fprintf(c.out, "%s\n\n", c.notice("! "+text))
}

// Run reads lines until EOF, /exit or ctx is cancelled. Each line is
// delivered as the input field's value followed by an Enter key press.
func (c *Console) Run(ctx context.Context, bus *widget.Bus) error {
	fmt.Fprintln(c.out, c.bot(c.text.Text(locale.Title)))
	fmt.Fprintf(c.out, "%s, %s\n\n", CommandClear, CommandExit)

	for ctx.Err() == nil {
		fmt.Fprint(c.out, c.you(c.text.Text(locale.You)+": "))
		if !c.scanner.Scan() {
			fmt.Fprintln(c.out)
			return c.scanner.Err()
		}
		line := c.scanner.Text()

		var err error
		switch strings.TrimSpace(line) {
		case CommandExit:
			return nil
		case CommandClear:
			err = bus.Dispatch(ctx, widget.Event{Action: widget.ActionClearDatabase})
		default:
			c.SetInput(line)
			err = bus.Dispatch(ctx, widget.Event{Action: widget.ActionKeyPress, Key: widget.KeyEnter})
		}

		if errors.Is(err, widget.ErrBusy) {
			fmt.Fprintln(c.out, c.muted(c.text.Text(locale.Busy)))
		} else if err != nil {
			return err
		}
	}
	return ctx.Err()
}
