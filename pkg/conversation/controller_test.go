package conversation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/responsio/pkg/adapters/dom"
	"github.com/aretw0/responsio/pkg/config"
	"github.com/aretw0/responsio/pkg/conversation"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/eventloop"
	"github.com/aretw0/responsio/pkg/history"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/aretw0/responsio/pkg/storage"
	"github.com/aretw0/responsio/pkg/transport"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identity = "visitor-42"

type transportFunc func(ctx context.Context, req domain.Request) domain.Result

func (f transportFunc) Do(ctx context.Context, req domain.Request) domain.Result {
	return f(ctx, req)
}

type fixture struct {
	loop    *eventloop.Loop
	doc     *dom.Document
	history *history.Log
	ctrl    *conversation.Controller
	tree    config.Tree
}

func newFixture(t *testing.T, root string, tr ports.Transport) *fixture {
	t.Helper()

	tree, err := config.FromRoot(root, identity)
	require.NoError(t, err)
	doc, err := dom.New(`<html><head></head><body><div id="support"></div></body></html>`)
	require.NoError(t, err)

	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		loop.Wait()
		cancel()
		<-loop.Done()
	})

	log := history.New(storage.NewVolatile())
	return &fixture{
		loop:    loop,
		doc:     doc,
		history: log,
		ctrl:    conversation.New(tree, doc, log, tr, loop),
		tree:    tree,
	}
}

// on runs fn on the conversation thread.
func (f *fixture) on(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, f.loop.Call(context.Background(), fn))
}

// settle waits until queued tasks and outstanding requests have completed.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	f.on(t, func() {})
	f.loop.Wait()
	f.on(t, func() {})
}

func commands(cmds ...domain.Command) map[string]any {
	list := make([]any, len(cmds))
	for i, c := range cmds {
		list[i] = map[string]any{"command": c.Command, "data": c.Data}
	}
	return map[string]any{"commands": list}
}

func success(payload any) domain.Result {
	return domain.Result{Status: http.StatusOK, Payload: payload}
}

func TestController_BootAndChat(t *testing.T) {
	var (
		mu     sync.Mutex
		inputs []string
	)
	r := chi.NewRouter()
	r.Get("/responsio/init/{identity}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, identity, chi.URLParam(req, "identity"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Envelope{Commands: []domain.Command{
			{Command: domain.CommandInit, Data: map[string]any{"selector": "#support", "title": "Support"}},
			{Command: domain.CommandReset},
		}})
	})
	r.Post("/responsio/chat/{identity}", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		mu.Lock()
		inputs = append(inputs, body["input"])
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Envelope{Commands: []domain.Command{
			{Command: domain.CommandText, Data: "Hi there"},
		}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	f := newFixture(t, srv.URL+"/", transport.New(srv.URL+"/responsio/"))

	f.on(t, func() { f.ctrl.Boot(context.Background()) })
	f.settle(t)

	f.on(t, func() {
		assert.Equal(t, conversation.Ready, f.ctrl.State())
		assert.True(t, f.doc.Mounted())
		assert.Equal(t, "Support", f.doc.Title())
	})

	f.on(t, func() { f.doc.Enter("  Hello  ") })
	f.settle(t)

	mu.Lock()
	assert.Equal(t, []string{"Hello"}, inputs)
	mu.Unlock()

	want := []string{
		domain.UserFragment("Hello"),
		domain.BotFragment("Hi there"),
	}
	f.on(t, func() {
		assert.Equal(t, want, f.history.All())
		assert.Equal(t, want, f.doc.Messages())
	})
}

func TestController_SubmitIgnoresBlankInput(t *testing.T) {
	calls := 0
	f := newFixture(t, "http://chat.test/", transportFunc(func(context.Context, domain.Request) domain.Result {
		calls++
		return success(commands())
	}))

	f.on(t, func() { f.ctrl.Submit(context.Background(), " \n\t ") })
	f.settle(t)

	assert.Zero(t, calls)
	assert.Zero(t, f.history.Len())
}

func TestController_SubmitRequest(t *testing.T) {
	requests := make(chan domain.Request, 1)
	f := newFixture(t, "http://chat.test/", transportFunc(func(_ context.Context, req domain.Request) domain.Result {
		requests <- req
		return success(commands())
	}))

	f.on(t, func() { f.ctrl.Submit(context.Background(), "a <b>\nc") })
	f.settle(t)

	req := <-requests
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "chat/"+identity, req.Endpoint)
	assert.Equal(t, map[string]any{"input": "a <b>\nc"}, req.Payload)
	assert.Equal(t, []string{domain.UserFragment("a &lt;b&gt;<br/>c")}, f.history.All())
}

func TestController_SubmitFailureIsLogOnly(t *testing.T) {
	f := newFixture(t, "http://chat.test/", transportFunc(func(context.Context, domain.Request) domain.Result {
		return domain.Result{Status: 500, Failure: &domain.Failure{Status: 500, Message: "boom"}}
	}))

	f.on(t, func() { f.ctrl.Submit(context.Background(), "Hello") })
	f.settle(t)

	f.on(t, func() {
		assert.Equal(t, []string{domain.UserFragment("Hello")}, f.history.All())
		assert.Equal(t, []string{domain.UserFragment("Hello"), domain.PendingFragment}, f.doc.Messages())
	})
}

func TestController_Init(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		require.NoError(t, f.ctrl.Init(context.Background(), domain.InitOptions{Style: "dark", Selector: "#support"}))

		assert.Equal(t, conversation.Ready, f.ctrl.State())
		assert.True(t, f.doc.Mounted())
		assert.Equal(t, []string{
			"https://assets.test/css/responsio-dark.css",
			"https://assets.test/css/responsio-base-styles.css",
		}, f.doc.Stylesheets())
		assert.Equal(t, "Title", f.doc.Title())
	})

	scrolls := 0
	f.on(t, func() {
		scrolls = f.doc.Scrolls()
		f.doc.LoadStyles()
		f.doc.Click()
	})
	f.settle(t)

	f.on(t, func() {
		assert.Equal(t, scrolls+1, f.doc.Scrolls())
		assert.True(t, f.doc.Visible())
	})
}

func TestController_InitDefaults(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		require.NoError(t, f.ctrl.Execute(context.Background(), []domain.Command{{Command: domain.CommandInit}}))
		assert.Equal(t, f.tree.Stylesheets(domain.DefaultStyle), f.doc.Stylesheets())
		assert.True(t, f.doc.Mounted())
	})
}

func TestController_InitMissingAttachment(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		err := f.ctrl.Init(context.Background(), domain.InitOptions{Selector: "#nowhere", Title: "Ignored"})
		assert.ErrorIs(t, err, domain.ErrNoAttachment)

		assert.Equal(t, conversation.Uninitialized, f.ctrl.State())
		assert.False(t, f.doc.Mounted())
		assert.Empty(t, f.doc.Stylesheets())
		assert.Equal(t, "Title", f.doc.Title())
	})
}

func TestController_SecondInitIgnored(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		require.NoError(t, f.ctrl.Init(context.Background(), domain.InitOptions{Selector: "#support", Title: "First"}))
		err := f.ctrl.Init(context.Background(), domain.InitOptions{Selector: "#support", Title: "Second"})
		assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)

		assert.Equal(t, "First", f.doc.Title())
		assert.Len(t, f.doc.Stylesheets(), 2)
	})
}

func TestController_InitRejectsMalformedOptions(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		err := f.ctrl.Execute(context.Background(), []domain.Command{{Command: domain.CommandInit, Data: "body"}})
		assert.ErrorIs(t, err, domain.ErrInvalidCommand)
		assert.False(t, f.doc.Mounted())
	})
}

func TestController_Text(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		require.NoError(t, f.doc.Append(domain.PendingFragment))
		require.NoError(t, f.ctrl.Text(context.Background(), "line 1\nline <2>"))

		want := []string{domain.BotFragment("line 1<br/>line &lt;2&gt;")}
		assert.Equal(t, want, f.doc.Messages())
		assert.Equal(t, want, f.history.All())
	})
}

func TestController_TextData(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		err := f.ctrl.Execute(context.Background(), []any{
			map[string]any{"command": "text", "data": 42.0},
			map[string]any{"command": "text"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCommand)
		assert.Equal(t, []string{domain.BotFragment("42")}, f.history.All())
	})
}

func TestController_RestoreIsIdempotent(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)
	entries := []string{domain.UserFragment("Hello"), domain.BotFragment("Hi there")}
	for _, e := range entries {
		require.NoError(t, f.history.Append(e))
	}

	f.on(t, func() {
		require.NoError(t, f.ctrl.Restore(context.Background()))
		first := f.doc.Messages()
		require.NoError(t, f.ctrl.Restore(context.Background()))

		assert.Equal(t, entries, first)
		assert.Equal(t, first, f.doc.Messages())
		assert.Equal(t, entries, f.history.All())
	})
}

func TestController_ResetThenRestore(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)
	require.NoError(t, f.history.Append(domain.UserFragment("Hello")))

	f.on(t, func() {
		require.NoError(t, f.ctrl.Restore(context.Background()))
		require.Len(t, f.doc.Messages(), 1)

		require.NoError(t, f.ctrl.Reset(context.Background()))
		require.NoError(t, f.ctrl.Reset(context.Background()))
		require.NoError(t, f.ctrl.Restore(context.Background()))

		assert.Empty(t, f.doc.Messages())
		assert.Zero(t, f.history.Len())
	})
}

func TestController_MixedBatch(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)

	f.on(t, func() {
		err := f.ctrl.Execute(context.Background(), []any{
			map[string]any{"command": "text", "data": "Hi"},
			map[string]any{"command": "bogus"},
			map[string]any{"command": "reset"},
		})
		assert.ErrorIs(t, err, domain.ErrUnknownCommand)
		assert.ErrorContains(t, err, "bogus")

		assert.Zero(t, f.history.Len())
		assert.Empty(t, f.doc.Messages())
	})
}

func TestController_InvalidEnvelope(t *testing.T) {
	f := newFixture(t, "http://chat.test/", transportFunc(func(context.Context, domain.Request) domain.Result {
		return success(map[string]any{"commands": "not a list"})
	}))

	f.on(t, func() { f.ctrl.Boot(context.Background()) })
	f.settle(t)

	f.on(t, func() {
		assert.Equal(t, conversation.Uninitialized, f.ctrl.State())
	})
}

func TestController_DuplicateRegistration(t *testing.T) {
	f := newFixture(t, "https://assets.test/", nil)
	assert.Panics(t, func() { f.ctrl.Register(f.ctrl.Executor().Registry()) })
}
