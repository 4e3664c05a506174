package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/observability"
	"github.com/mitchellh/mapstructure"
)

// Executor dispatches command lists to the handlers of a Registry.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithLogger sets a custom structured logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics records one observation per dispatched command.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// New creates an executor bound to registry.
func New(registry *Registry, opts ...Option) *Executor {
	e := &Executor{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Registry returns the handler registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs every command of list in order, synchronously.
//
// list must be an ordered sequence of descriptors: []domain.Command, a decoded
// JSON array ([]any of objects) or a raw JSON array. Any other shape is reported
// as domain.ErrInvalidResponse and no handler runs. Unknown commands, handler
// errors and handler panics are reported per descriptor and never abort the batch.
//
// Every problem is logged; the returned error joins them for callers that care.
func (e *Executor) Execute(ctx context.Context, list any) error {
	commands, err := decodeList(list)
	if err != nil {
		e.logger.Error("invalid response", "err", err, "response", list)
		e.metrics.ObserveCommand("", observability.OutcomeInvalid)
		return err
	}

	var errs []error
	for i, entry := range commands {
		if entry.err != nil {
			e.logger.Error("invalid command", "err", entry.err, "index", i, "entry", entry.raw)
			e.metrics.ObserveCommand("", observability.OutcomeInvalid)
			errs = append(errs, entry.err)
			continue
		}
		if err := e.dispatch(ctx, entry.cmd); err != nil {
			errs = append(errs, fmt.Errorf("command %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) dispatch(ctx context.Context, cmd domain.Command) (err error) {
	fn, ok := e.registry.Lookup(cmd.Command)
	if !ok {
		err = fmt.Errorf("%w: %s", domain.ErrUnknownCommand, cmd)
		e.logger.Error("invalid command", "err", err, "command", cmd.Command)
		e.metrics.ObserveCommand(cmd.Command, observability.OutcomeUnknown)
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", cmd.Command, r)
			e.logger.Error("command panicked", "err", err, "command", cmd.Command)
			e.metrics.ObserveCommand(cmd.Command, observability.OutcomePanic)
		}
	}()

	e.logger.Debug("executing command", "command", cmd.Command)
	if err = fn(ctx, cmd.Data); err != nil {
		err = fmt.Errorf("command %q: %w", cmd.Command, err)
		e.logger.Error("command failed", "err", err, "command", cmd.Command)
		e.metrics.ObserveCommand(cmd.Command, observability.OutcomeError)
		return err
	}
	e.metrics.ObserveCommand(cmd.Command, observability.OutcomeOK)
	return nil
}

type entry struct {
	cmd domain.Command
	raw any
	err error
}

// decodeList normalizes the accepted list shapes into descriptors.
func decodeList(list any) ([]entry, error) {
	switch l := list.(type) {
	case []domain.Command:
		entries := make([]entry, len(l))
		for i, c := range l {
			entries[i] = entry{cmd: c, raw: c}
		}
		return entries, nil
	case []any:
		entries := make([]entry, len(l))
		for i, raw := range l {
			entries[i] = decodeEntry(raw)
		}
		return entries, nil
	case []map[string]any:
		entries := make([]entry, len(l))
		for i, raw := range l {
			entries[i] = decodeEntry(raw)
		}
		return entries, nil
	case json.RawMessage:
		return decodeRaw(l)
	case []byte:
		return decodeRaw(l)
	default:
		return nil, fmt.Errorf("%w: expected a command list, got %T", domain.ErrInvalidResponse, list)
	}
}

func decodeRaw(data []byte) ([]entry, error) {
	var l []any
	if err := json.Unmarshal(data, &l); err != nil || l == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrInvalidResponse)
	}
	return decodeList(l)
}

func decodeEntry(raw any) entry {
	switch v := raw.(type) {
	case domain.Command:
		return entry{cmd: v, raw: raw}
	case map[string]any:
		var cmd domain.Command
		if err := mapstructure.Decode(v, &cmd); err != nil {
			return entry{raw: raw, err: fmt.Errorf("%w: %v", domain.ErrInvalidCommand, err)}
		}
		return entry{cmd: cmd, raw: raw}
	default:
		return entry{raw: raw, err: fmt.Errorf("%w: %v", domain.ErrInvalidCommand, raw)}
	}
}
