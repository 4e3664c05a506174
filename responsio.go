package responsio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/responsio/pkg/adapters/dom"
	"github.com/aretw0/responsio/pkg/config"
	"github.com/aretw0/responsio/pkg/conversation"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/eventloop"
	"github.com/aretw0/responsio/pkg/history"
	"github.com/aretw0/responsio/pkg/observability"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/aretw0/responsio/pkg/storage"
	"github.com/aretw0/responsio/pkg/transport"
)

// Version of the client. The widget script it mirrors is responsio-1.0.0.js.
const Version = "1.0.0"

// ErrInactive is returned by New when the configuration carries no identity.
var ErrInactive = errors.New("responsio: client inactive")

// Client is the public entry surface: command handlers, network, storage and
// command execution, all bound to one conversation.
type Client struct {
	tree       config.Tree
	loop       *eventloop.Loop
	store      *storage.Store
	history    *history.Log
	transport  *transport.Client
	controller *conversation.Controller
	surface    ports.Surface

	medium     ports.Medium
	namespace  string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithSurface renders the chat on surface (default: an in-memory HTML page).
func WithSurface(surface ports.Surface) Option {
	return func(c *Client) {
		c.surface = surface
	}
}

// WithMedium persists the storage tree on medium. Without one, storage lives in memory.
func WithMedium(medium ports.Medium) Option {
	return func(c *Client) {
		c.medium = medium
	}
}

// WithNamespace overrides the storage namespace.
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

// WithHTTPClient sends requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records commands, requests and history size.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New wires a client for tree. The storage medium is probed here.
// Without an identity nothing is built and ErrInactive is returned.
func New(ctx context.Context, tree config.Tree, opts ...Option) (*Client, error) {
	if !tree.Active() {
		return nil, fmt.Errorf("%w: %w", ErrInactive, domain.ErrNoIdentity)
	}

	c := &Client{tree: tree, namespace: domain.Namespace}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.surface == nil {
		doc, err := dom.New("")
		if err != nil {
			return nil, err
		}
		c.surface = doc
	}

	c.store = storage.New(ctx, c.medium,
		storage.WithNamespace(c.namespace),
		storage.WithLogger(c.logger),
	)
	c.history = history.New(c.store)
	c.metrics.SetHistoryEntries(c.history.Len())

	transportOpts := []transport.Option{
		transport.WithLogger(c.logger),
		transport.WithMetrics(c.metrics),
	}
	if c.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(c.httpClient))
	}
	if c.timeout > 0 {
		transportOpts = append(transportOpts, transport.WithTimeout(c.timeout))
	}
	c.transport = transport.New(tree.URL.Service, transportOpts...)

	c.loop = eventloop.New(eventloop.WithLogger(c.logger))
	c.controller = conversation.New(tree, c.surface, c.history, c.transport, c.loop,
		conversation.WithLogger(c.logger),
		conversation.WithMetrics(c.metrics),
	)

	c.logger.Debug("client ready",
		"identity", tree.Identity,
		"service", tree.URL.Service,
		"storage", c.store.Strategy(),
	)
	return c, nil
}

// Run boots the conversation and processes events until ctx is cancelled.
// It waits for outstanding requests before returning.
func (c *Client) Run(ctx context.Context) error {
	c.loop.Post(func() { c.controller.Boot(ctx) })
	err := c.loop.Run(ctx)
	c.loop.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.Tree {
	return c.tree
}

// Surface returns the surface the chat renders on.
func (c *Client) Surface() ports.Surface {
	return c.surface
}

// Storage returns the namespaced key-value store.
func (c *Client) Storage() ports.KeyValueStore {
	return c.store
}

// History returns the persisted message log.
func (c *Client) History() *history.Log {
	return c.history
}

// Execute dispatches a command list on the conversation thread and waits for it.
// Must not be called from a command handler.
func (c *Client) Execute(ctx context.Context, list any) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.controller.Execute(ctx, list)
	})
}

// Submit sends user input as if typed in the chat window.
func (c *Client) Submit(ctx context.Context, text string) error {
	return c.call(ctx, func(ctx context.Context) error {
		c.controller.Submit(ctx, text)
		return nil
	})
}

// Call runs fn on the conversation thread and waits for it.
// Surfaces are not safe for concurrent use; inspect them through Call.
func (c *Client) Call(ctx context.Context, fn func()) error {
	return c.loop.Call(ctx, fn)
}

// Commands exposes the command handlers.
func (c *Client) Commands() Commands {
	return Commands{c: c}
}

// Network exposes fire-and-forget requests against the chat service.
func (c *Client) Network() Network {
	return Network{c: c}
}

// Close releases the storage medium when it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.medium.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	var err error
	if cerr := c.loop.Call(ctx, func() { err = fn(ctx) }); cerr != nil {
		return cerr
	}
	return err
}

// Commands runs the command handlers on the conversation thread.
type Commands struct {
	c *Client
}

func (cmds Commands) Init(ctx context.Context, opts domain.InitOptions) error {
	return cmds.c.call(ctx, func(ctx context.Context) error {
		return cmds.c.controller.Init(ctx, opts)
	})
}

func (cmds Commands) Restore(ctx context.Context) error {
	return cmds.c.call(ctx, cmds.c.controller.Restore)
}

func (cmds Commands) Reset(ctx context.Context) error {
	return cmds.c.call(ctx, cmds.c.controller.Reset)
}

func (cmds Commands) Text(ctx context.Context, text string) error {
	return cmds.c.call(ctx, func(ctx context.Context) error {
		return cmds.c.controller.Text(ctx, text)
	})
}

// Network issues requests off the conversation thread. Callbacks run on it.
type Network struct {
	c *Client
}

// Get requests endpoint with params. Nil callbacks are skipped.
func (n Network) Get(ctx context.Context, endpoint string, params url.Values, opts domain.RequestOptions, onSuccess func(any), onFailure func(*domain.Failure)) {
	n.send(ctx, domain.Request{
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Params:   params,
		Options:  opts,
	}, onSuccess, onFailure)
}

// Post sends payload as JSON to endpoint. Nil callbacks are skipped.
func (n Network) Post(ctx context.Context, endpoint string, payload any, opts domain.RequestOptions, onSuccess func(any), onFailure func(*domain.Failure)) {
	n.send(ctx, domain.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Payload:  payload,
		Options:  opts,
	}, onSuccess, onFailure)
}

func (n Network) send(ctx context.Context, req domain.Request, onSuccess func(any), onFailure func(*domain.Failure)) {
	n.c.loop.Async(func() func() {
		res := n.c.transport.Do(ctx, req)
		return func() {
			switch {
			case res.OK() && onSuccess != nil:
				onSuccess(res.Payload)
			case !res.OK() && onFailure != nil:
				onFailure(res.Failure)
			}
		}
	})
}
