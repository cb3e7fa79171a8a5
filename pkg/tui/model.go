package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/widget"
)

// Lines taken by the title, status, input and help rows
const chromeHeight = 4

type model struct {
	ctx  context.Context
	host *Host
	bus  *widget.Bus

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	rendered map[string]string
	styles   styles

	dialog *dialogMsg
	status string

	ready  bool
	width  int
	height int
}

func newModel(ctx context.Context, h *Host, bus *widget.Bus) model {
	ti := textinput.New()
	ti.Placeholder = h.text.Text(locale.InputPlaceholder)
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:      ctx,
		host:     h,
		bus:      bus,
		input:    ti,
		spinner:  sp,
		rendered: make(map[string]string),
		styles:   defaultStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.dialog != nil {
			return m.answerDialog(msg), nil
		}
		return m.handleKey(msg)

	case dialogMsg:
		m.dialog = &msg
		return m, nil

	case inputClearedMsg:
		if m.input.Value() == msg.value {
			m.input.Reset()
		}
		return m, nil

	case transcriptChangedMsg:
		m.refresh()
		return m, nil

	case dispatchDoneMsg:
		switch {
		case errors.Is(msg.err, widget.ErrBusy):
			m.status = m.host.text.Text(locale.Busy)
		case msg.err != nil:
			m.status = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.host.tr.PendingCount() > 0 {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		m.host.submit(m.input.Value())
		return m, m.dispatch(widget.Event{Action: widget.ActionKeyPress, Key: widget.KeyEnter})
	case "ctrl+d":
		return m, m.dispatch(widget.Event{Action: widget.ActionClearDatabase})
	case "pgup":
		m.viewport.ViewUp()
		m.trackScroll()
		return m, nil
	case "pgdown":
		m.viewport.ViewDown()
		m.trackScroll()
		return m, nil
	case "up":
		m.viewport.LineUp(1)
		m.trackScroll()
		return m, nil
	case "down":
		m.viewport.LineDown(1)
		m.trackScroll()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) answerDialog(msg tea.KeyMsg) model {
	d := m.dialog
	if d.ack != nil {
		close(d.ack)
		m.dialog = nil
		return m
	}

	switch msg.String() {
	case "y", "Y":
		d.confirm <- true
	case "n", "N", "esc", "enter", "ctrl+c":
		d.confirm <- false
	default:
		return m
	}
	m.dialog = nil
	return m
}

// dispatch runs the event on a command goroutine so the UI keeps updating
// while the backend call is outstanding.
func (m model) dispatch(ev widget.Event) tea.Cmd {
	ctx, bus := m.ctx, m.bus
	return func() tea.Msg {
		return dispatchDoneMsg{err: bus.Dispatch(ctx, ev)}
	}
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height

	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - len(m.input.Prompt) - 1

	if m.host.opts.Markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
		if err == nil {
			m.renderer = r
		}
	}
	m.rendered = make(map[string]string)
	m.refresh()
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if m.host.tr.Following() {
		m.viewport.GotoBottom()
	}
}

func (m *model) trackScroll() {
	m.host.tr.SetFollowing(m.viewport.AtBottom())
}
