package widget

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ragchat/pkg/backend"
	"github.com/andrew/ragchat/pkg/backend/backendtest"
	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/models"
	"github.com/andrew/ragchat/pkg/transcript"
)

type fakeInput struct{ value string }

func (f *fakeInput) Value() string { return f.value }
func (f *fakeInput) Clear()        { f.value = "" }

type fakeDialogs struct {
	answer  bool
	prompts []string
	notices []string
}

func (f *fakeDialogs) Confirm(_ context.Context, prompt string) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

func (f *fakeDialogs) Notify(_ context.Context, text string) {
	f.notices = append(f.notices, text)
}

// fakeBackend records calls. Chat blocks on gate when it is set.
type fakeBackend struct {
	mu         sync.Mutex
	chatCalls  []string
	clearCalls int

	reply    string
	chatErr  error
	clearRes backend.ClearResult
	clearErr error

	gate    chan struct{}
	started chan struct{}

	// seen runs while the chat call is outstanding
	seen func()
}

func (f *fakeBackend) Chat(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, message)
	f.mu.Unlock()

	if f.seen != nil {
		f.seen()
	}
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.reply, f.chatErr
}

func (f *fakeBackend) ClearDatabase(ctx context.Context) (backend.ClearResult, error) {
	f.mu.Lock()
	f.clearCalls++
	f.mu.Unlock()
	return f.clearRes, f.clearErr
}

type harness struct {
	ctrl    *Controller
	input   *fakeInput
	tr      *transcript.Transcript
	dialogs *fakeDialogs
	text    *locale.Catalog
}

func newHarness(t *testing.T, client backend.Client) *harness {
	t.Helper()
	cat, err := locale.New("en")
	require.NoError(t, err)

	h := &harness{
		input:   &fakeInput{},
		tr:      transcript.New(),
		dialogs: &fakeDialogs{},
		text:    cat,
	}
	h.ctrl, err = New(h.input, h.tr, client, h.dialogs, WithCatalog(cat))
	require.NoError(t, err)
	return h
}

func texts(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestSendEmptyInputIsNoop(t *testing.T) {
	fb := &fakeBackend{}
	h := newHarness(t, fb)

	for _, in := range []string{"", "   ", "\t\n"} {
		h.input.value = in
		require.NoError(t, h.ctrl.SendMessage(context.Background()))
	}

	assert.Zero(t, h.tr.Len())
	assert.Empty(t, fb.chatCalls)
}

func TestSendSuccess(t *testing.T) {
	fb := &fakeBackend{reply: "hi"}
	h := newHarness(t, fb)

	var pendingDuringCall int
	fb.seen = func() { pendingDuringCall = h.tr.PendingCount() }

	h.input.value = "  hello "
	require.NoError(t, h.ctrl.SendMessage(context.Background()))

	msgs := h.tr.Messages()
	assert.Equal(t, []string{"hello", "hi"}, texts(msgs))
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, models.SenderBot, msgs[1].Sender)
	assert.Equal(t, 1, pendingDuringCall)
	assert.Zero(t, h.tr.PendingCount())
	assert.Empty(t, h.input.value)
	assert.Equal(t, []string{"hello"}, fb.chatCalls)
	assert.True(t, h.tr.Following())
}

func TestSendServerErrorUsesServerText(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.StatusError{Endpoint: backend.ChatPath, StatusCode: 500, Message: "error X"}}
	h := newHarness(t, fb)

	h.input.value = "hello"
	require.NoError(t, h.ctrl.SendMessage(context.Background()))

	last, ok := h.tr.Last()
	require.True(t, ok)
	assert.Equal(t, "error X", last.Text)
	assert.Equal(t, models.SenderBot, last.Sender)
	assert.Zero(t, h.tr.PendingCount())
}

func TestSendServerErrorWithoutTextUsesFallback(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.StatusError{Endpoint: backend.ChatPath, StatusCode: 400}}
	h := newHarness(t, fb)

	h.input.value = "hello"
	require.NoError(t, h.ctrl.SendMessage(context.Background()))

	last, _ := h.tr.Last()
	assert.Equal(t, h.text.Text(locale.ChatFailed), last.Text)
}

func TestSendTransportError(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.TransportError{Endpoint: backend.ChatPath, Err: errors.New("connection refused")}}
	h := newHarness(t, fb)

	h.input.value = "hello"
	require.NoError(t, h.ctrl.SendMessage(context.Background()))

	assert.Equal(t, []string{"hello", "A network error occurred. Please try again."}, texts(h.tr.Messages()))
	assert.Zero(t, h.tr.PendingCount())
}

func TestSendWhileBusy(t *testing.T) {
	fb := &fakeBackend{reply: "first", gate: make(chan struct{}), started: make(chan struct{})}
	h := newHarness(t, fb)

	h.input.value = "one"
	done := make(chan error, 1)
	go func() { done <- h.ctrl.SendMessage(context.Background()) }()
	<-fb.started

	assert.True(t, h.ctrl.Busy())
	h.input.value = "two"
	assert.ErrorIs(t, h.ctrl.SendMessage(context.Background()), ErrBusy)
	assert.ErrorIs(t, h.ctrl.ClearDatabase(context.Background()), ErrBusy)
	assert.Equal(t, "two", h.input.value, "input is kept for a later retry")
	assert.Equal(t, 1, h.tr.PendingCount())

	close(fb.gate)
	require.NoError(t, <-done)

	assert.False(t, h.ctrl.Busy())
	assert.Equal(t, []string{"one", "first"}, texts(h.tr.Messages()))
	assert.Empty(t, h.dialogs.prompts)
}

func TestClearDeclined(t *testing.T) {
	fb := &fakeBackend{}
	h := newHarness(t, fb)
	h.dialogs.answer = false

	require.NoError(t, h.ctrl.ClearDatabase(context.Background()))

	assert.Len(t, h.dialogs.prompts, 1)
	assert.Zero(t, h.tr.Len())
	assert.Zero(t, fb.clearCalls)
	assert.False(t, h.ctrl.Busy())
}

func TestClearConfirmed(t *testing.T) {
	fb := &fakeBackend{clearRes: backend.ClearResult{Status: backend.ClearSuccess, Message: "done"}}
	h := newHarness(t, fb)
	h.dialogs.answer = true

	require.NoError(t, h.ctrl.ClearDatabase(context.Background()))

	assert.Equal(t, 1, fb.clearCalls)
	assert.Equal(t, []string{h.text.Text(locale.Clearing), "Database cleared: done"}, texts(h.tr.Messages()))
	assert.Equal(t, []string{h.text.Text(locale.RestartNotice)}, h.dialogs.notices)
}

func TestClearServerError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"with message", "Error clearing database: locked", "Clearing the database failed: Error clearing database: locked"},
		{"without message", "", "Clearing the database failed: unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{clearErr: &backend.StatusError{Endpoint: backend.ClearDatabasePath, StatusCode: 500, Message: tt.msg}}
			h := newHarness(t, fb)
			h.dialogs.answer = true

			require.NoError(t, h.ctrl.ClearDatabase(context.Background()))

			last, _ := h.tr.Last()
			assert.Equal(t, tt.want, last.Text)
			assert.Empty(t, h.dialogs.notices)
		})
	}
}

func TestClearTransportError(t *testing.T) {
	fb := &fakeBackend{clearErr: &backend.TransportError{Endpoint: backend.ClearDatabasePath, Err: errors.New("EOF")}}
	h := newHarness(t, fb)
	h.dialogs.answer = true

	require.NoError(t, h.ctrl.ClearDatabase(context.Background()))

	last, _ := h.tr.Last()
	assert.Equal(t, h.text.Text(locale.ClearNetworkError), last.Text)
	assert.Empty(t, h.dialogs.notices)
}

func TestBusBindings(t *testing.T) {
	fb := &fakeBackend{reply: "pong"}
	h := newHarness(t, fb)
	h.dialogs.answer = false

	bus := NewBus()
	h.ctrl.Bind(bus)
	ctx := context.Background()

	h.input.value = "ping"
	require.NoError(t, bus.Dispatch(ctx, Event{Action: ActionKeyPress, Key: "a"}))
	assert.Empty(t, fb.chatCalls, "only Enter submits")

	require.NoError(t, bus.Dispatch(ctx, Event{Action: ActionKeyPress, Key: KeyEnter}))
	h.input.value = "again"
	require.NoError(t, bus.Dispatch(ctx, Event{Action: ActionSend}))
	require.NoError(t, bus.Dispatch(ctx, Event{Action: ActionClearDatabase}))

	assert.Equal(t, []string{"ping", "again"}, fb.chatCalls)
	assert.Len(t, h.dialogs.prompts, 1)
}

func TestAgainstHTTPBackend(t *testing.T) {
	srv := backendtest.NewServer()
	defer srv.Close()
	srv.OnChat(func(message string) backendtest.Reply {
		if message == "boom" {
			return backendtest.Reply{Status: http.StatusInternalServerError, Body: backend.ChatResponse{Response: "error X"}}
		}
		if message == "proxy" {
			return backendtest.Reply{Status: http.StatusBadGateway, Raw: "bad gateway"}
		}
		return backendtest.Reply{Status: http.StatusOK, Body: backend.ChatResponse{Response: "hi"}}
	})
	srv.OnClear(backendtest.Reply{Status: http.StatusOK, Body: backend.ClearResult{Status: backend.ClearSuccess, Message: "done"}})

	h := newHarness(t, backend.NewHTTPClient(srv.URL()))
	h.dialogs.answer = true
	ctx := context.Background()

	for _, in := range []string{"hello", "boom", "proxy"} {
		h.input.value = in
		require.NoError(t, h.ctrl.SendMessage(ctx))
	}
	require.NoError(t, h.ctrl.ClearDatabase(ctx))

	assert.Equal(t, []string{
		"hello", "hi",
		"boom", "error X",
		"proxy", h.text.Text(locale.NetworkError),
		h.text.Text(locale.Clearing), "Database cleared: done",
	}, texts(h.tr.Messages()))
	assert.Zero(t, h.tr.PendingCount())
	assert.Len(t, h.dialogs.notices, 1)
	assert.Len(t, srv.Requests(), 4)
}
