// Package conversation drives the chat: it owns the command handlers, turns user
// input into chat requests and keeps the rendered history in step with the surface.
//
// Every method of a Controller is meant to run on the conversation thread, the
// ports.Scheduler it was built with. Transport calls run off that thread and
// post their continuation back to it, so a Controller never blocks on the network.
package conversation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/responsio/pkg/config"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/executor"
	"github.com/aretw0/responsio/pkg/history"
	"github.com/aretw0/responsio/pkg/observability"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// State is the lifecycle of the chat surface.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller applies server commands to a surface and a history log.
type Controller struct {
	tree      config.Tree
	surface   ports.Surface
	history   *history.Log
	transport ports.Transport
	scheduler ports.Scheduler
	executor  *executor.Executor

	logger  *slog.Logger
	metrics *observability.Metrics

	state State
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets a custom structured logger for the controller and its executor.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics records commands and history size.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// New creates a controller and registers its handlers in a fresh executor.
func New(tree config.Tree, surface ports.Surface, log *history.Log, transport ports.Transport, scheduler ports.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		tree:      tree,
		surface:   surface,
		history:   log,
		transport: transport,
		scheduler: scheduler,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registry := executor.NewRegistry()
	c.Register(registry)
	c.executor = executor.New(registry,
		executor.WithLogger(c.logger),
		executor.WithMetrics(c.metrics),
	)
	return c
}

// Register binds the controller handlers to their command names.
// It panics if registry already holds one of them.
func (c *Controller) Register(registry *executor.Registry) {
	registry.MustRegister(domain.CommandInit, c.handleInit)
	registry.MustRegister(domain.CommandRestore, c.handleRestore)
	registry.MustRegister(domain.CommandReset, c.handleReset)
	registry.MustRegister(domain.CommandText, c.handleText)
}

// Executor returns the executor dispatching to this controller.
func (c *Controller) Executor() *executor.Executor {
	return c.executor
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Execute dispatches a command list to the handlers.
func (c *Controller) Execute(ctx context.Context, list any) error {
	return c.executor.Execute(ctx, list)
}

// Init mounts the chat window.
//
// The attachment point is checked first: when it is missing nothing is mounted
// and domain.ErrNoAttachment is returned. A second Init on a mounted
// conversation returns domain.ErrAlreadyInitialized and changes nothing.
func (c *Controller) Init(ctx context.Context, opts domain.InitOptions) error {
	if c.state == Ready {
		return domain.ErrAlreadyInitialized
	}
	opts = opts.WithDefaults()

	if !c.surface.HasAttachment(opts.Selector) {
		return fmt.Errorf("%w: %q", domain.ErrNoAttachment, opts.Selector)
	}

	c.surface.InstallStylesheets(c.tree.Stylesheets(opts.Style), func() {
		// The history may be rendered before styles apply; scroll again once they do.
		c.scheduler.Post(c.surface.ScrollToBottom)
	})
	if opts.Title != "" {
		c.surface.SetTitle(opts.Title)
	}
	if err := c.surface.Mount(opts.Selector); err != nil {
		return fmt.Errorf("failed to mount chat window: %w", err)
	}

	c.surface.Bind(ports.SurfaceEvents{
		OnToggle: func() {
			c.scheduler.Post(c.surface.ToggleVisible)
		},
		OnSubmit: func(text string) {
			c.scheduler.Post(func() { c.Submit(ctx, text) })
		},
	})

	c.state = Ready
	c.logger.Info("chat window mounted", "selector", opts.Selector, "style", opts.Style)
	return nil
}

// Restore re-renders the persisted history. Calling it twice renders the same messages.
func (c *Controller) Restore(ctx context.Context) error {
	c.surface.Clear()
	for i, fragment := range c.history.All() {
		if err := c.surface.Append(fragment); err != nil {
			c.logger.Warn("skipping unrenderable history entry", "err", err, "index", i)
		}
	}
	c.surface.ScrollToBottom()
	return nil
}

// Reset forgets the conversation: history and rendered messages are cleared.
func (c *Controller) Reset(ctx context.Context) error {
	err := c.history.Clear()
	c.surface.Clear()
	c.metrics.SetHistoryEntries(0)
	return err
}

// Text renders a bot message in place of the pending placeholder and records it.
func (c *Controller) Text(ctx context.Context, text string) error {
	fragment := domain.BotFragment(c.surface.Escape(text))

	c.surface.RemovePending()
	if err := c.surface.Append(fragment); err != nil {
		return fmt.Errorf("failed to render bot message: %w", err)
	}
	c.surface.ScrollToBottom()
	return c.record(fragment)
}

// Submit sends user input to the chat service.
//
// Input that is empty once trimmed is ignored. Otherwise the user message and a
// pending placeholder are rendered, the message is recorded and posted to
// chat/{identity}. The commands of the reply are executed on the conversation
// thread; a failed request is only logged.
func (c *Controller) Submit(ctx context.Context, input string) {
	msg := strings.TrimSpace(input)
	if msg == "" {
		return
	}

	fragment := domain.UserFragment(c.surface.Escape(msg))
	if err := c.surface.Append(fragment); err != nil {
		c.logger.Error("failed to render user message", "err", err)
	}
	if err := c.surface.Append(domain.PendingFragment); err != nil {
		c.logger.Error("failed to render pending message", "err", err)
	}
	c.surface.ScrollToBottom()
	if err := c.record(fragment); err != nil {
		c.logger.Error("failed to record user message", "err", err)
	}

	c.request(ctx, domain.Request{
		Method:   http.MethodPost,
		Endpoint: "chat/" + c.tree.Identity,
		Payload:  map[string]any{domain.KeyInput: msg},
		Options:  domain.RequestOptions{Accept: "application/json"},
	})
}

// Boot asks the service how to start the conversation: GET init/{identity}.
// The returned commands are executed like any chat reply.
func (c *Controller) Boot(ctx context.Context) {
	c.request(ctx, domain.Request{
		Method:   http.MethodGet,
		Endpoint: "init/" + c.tree.Identity,
	})
}

func (c *Controller) request(ctx context.Context, req domain.Request) {
	c.scheduler.Async(func() func() {
		res := c.transport.Do(ctx, req)
		return func() {
			if !res.OK() {
				c.logger.Error("chat request failed",
					"err", res.Failure,
					"endpoint", req.Endpoint,
					"status", res.Failure.Status,
				)
				return
			}
			_ = c.executor.Execute(ctx, res.Commands())
		}
	})
}

func (c *Controller) record(fragment string) error {
	if err := c.history.Append(fragment); err != nil {
		return err
	}
	c.metrics.SetHistoryEntries(c.history.Len())
	return nil
}

func (c *Controller) handleInit(ctx context.Context, data any) error {
	var opts domain.InitOptions
	if data != nil {
		if err := mapstructure.Decode(data, &opts); err != nil {
			return fmt.Errorf("%w: init options: %v", domain.ErrInvalidCommand, err)
		}
	}
	return c.Init(ctx, opts)
}

func (c *Controller) handleRestore(ctx context.Context, _ any) error {
	return c.Restore(ctx)
}

func (c *Controller) handleReset(ctx context.Context, _ any) error {
	return c.Reset(ctx)
}

func (c *Controller) handleText(ctx context.Context, data any) error {
	switch v := data.(type) {
	case string:
		return c.Text(ctx, v)
	case nil:
		return fmt.Errorf("%w: text without data", domain.ErrInvalidCommand)
	default:
		return c.Text(ctx, fmt.Sprint(v))
	}
}
