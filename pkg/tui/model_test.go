package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ragchat/pkg/backend"
	"github.com/andrew/ragchat/pkg/backend/backendtest"
	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/transcript"
	"github.com/andrew/ragchat/pkg/widget"
)

type fixture struct {
	host *Host
	tr   *transcript.Transcript
	bus  *widget.Bus
	srv  *backendtest.Server
	m    model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)

	cat, err := locale.New("en")
	require.NoError(t, err)

	tr := transcript.New()
	host := NewHost(tr, cat, Options{})
	ctrl, err := widget.New(host, tr, backend.NewHTTPClient(srv.URL()), host, widget.WithCatalog(cat))
	require.NoError(t, err)

	bus := widget.NewBus()
	ctrl.Bind(bus)

	m := newModel(context.Background(), host, bus)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return &fixture{host: host, tr: tr, bus: bus, srv: srv, m: next.(model)}
}

func (f *fixture) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.m.Update(msg)
	f.m = next.(model)
	return cmd
}

func (f *fixture) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestEnterDispatchesSend(t *testing.T) {
	f := newFixture(t)
	f.typeText(t, "hello")
	require.Equal(t, "hello", f.m.input.Value())

	cmd := f.update(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "hello", f.host.Value())

	done, ok := cmd().(dispatchDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	f.update(t, inputClearedMsg{value: "hello"})
	f.update(t, transcriptChangedMsg{})

	assert.Empty(t, f.m.input.Value())
	assert.Equal(t, 2, f.tr.Len())
	assert.Contains(t, f.m.viewport.View(), "hello")
	assert.Len(t, f.srv.Requests(), 1)
}

func TestInputClearedKeepsNewerText(t *testing.T) {
	f := newFixture(t)
	f.typeText(t, "next")

	f.update(t, inputClearedMsg{value: "previous"})
	assert.Equal(t, "next", f.m.input.Value())
}

func TestBusyShowsStatus(t *testing.T) {
	f := newFixture(t)
	f.update(t, dispatchDoneMsg{err: widget.ErrBusy})
	assert.Equal(t, f.host.text.Text(locale.Busy), f.m.status)

	f.typeText(t, "x")
	assert.Empty(t, f.m.status)
}

func TestConfirmDialog(t *testing.T) {
	f := newFixture(t)

	reply := make(chan bool, 1)
	f.update(t, dialogMsg{text: "sure?", confirm: reply})
	require.NotNil(t, f.m.dialog)
	assert.Contains(t, f.m.View(), "sure?")

	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.NotNil(t, f.m.dialog, "unrelated keys leave the dialog open")
	assert.Empty(t, f.m.input.Value())

	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Nil(t, f.m.dialog)
	assert.True(t, <-reply)
}

func TestConfirmDialogDeclinedByEnter(t *testing.T) {
	f := newFixture(t)

	reply := make(chan bool, 1)
	f.update(t, dialogMsg{text: "sure?", confirm: reply})
	f.update(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, <-reply)
}

func TestNoticeDialog(t *testing.T) {
	f := newFixture(t)

	ack := make(chan struct{})
	f.update(t, dialogMsg{text: "restart", ack: ack})
	f.update(t, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	assert.Nil(t, f.m.dialog)
	_, open := <-ack
	assert.False(t, open)
}

func TestCtrlDDispatchesClear(t *testing.T) {
	f := newFixture(t)

	cmd := f.update(t, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)

	// Confirm blocks until the dialog is answered, which happens on the
	// program loop; cancelling the context declines it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.m.ctx = ctx
	cmd = f.m.dispatch(widget.Event{Action: widget.ActionClearDatabase})

	done := cmd().(dispatchDoneMsg)
	assert.NoError(t, done.err)
	assert.Zero(t, f.tr.Len())
	assert.Empty(t, f.srv.Requests())
}

func TestHostConfirmHonoursContext(t *testing.T) {
	cat, err := locale.New("en")
	require.NoError(t, err)
	host := NewHost(transcript.New(), cat, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, host.Confirm(ctx, "sure?"))
	host.Notify(ctx, "done")
}

func TestEscQuits(t *testing.T) {
	f := newFixture(t)
	cmd := f.update(t, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
