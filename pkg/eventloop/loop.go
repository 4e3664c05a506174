// Package eventloop serializes the conversation onto a single goroutine.
//
// Handlers, surface events and transport continuations are posted to a Loop
// and run one at a time, in posting order. Blocking work runs elsewhere via
// Async and hands its continuation back to the loop.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Call once the loop no longer runs tasks.
var ErrStopped = errors.New("event loop stopped")

// Loop implements ports.Scheduler. The queue is unbounded, so Post never blocks,
// not even when called from a task running on the loop itself.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}

	workers sync.WaitGroup
}

// Option defines a functional option for configuring the Loop.
type Option func(*Loop)

// WithLogger sets a custom structured logger for the loop.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a loop. Tasks posted before Run are kept until it starts.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Post queues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Async runs work on its own goroutine and posts the continuation it returns.
// A nil continuation is skipped. Wait blocks until every work function has returned.
func (l *Loop) Async(work func() func()) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		if then := work(); then != nil {
			l.Post(then)
		}
	}()
}

// Call posts fn and blocks until it has run. Must not be called from the loop goroutine.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// The task may have been dropped by the shutdown.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes tasks until ctx is cancelled. Panics in tasks are recovered and logged.
// Tasks still queued when ctx ends are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.tasks = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			task, ok := l.next()
			if !ok {
				break
			}
			l.run(task)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until every Async work function has returned.
func (l *Loop) Wait() {
	l.workers.Wait()
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return task, true
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event handler panicked", "err", fmt.Errorf("%v", r))
		}
	}()
	task()
}
