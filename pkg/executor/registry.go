package executor

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/responsio/pkg/domain"
)

// Handler runs one command with its payload.
type Handler func(ctx context.Context, data any) error

// Registry maps command names to handlers.
// Names are validated against a closed set when registered, not when dispatched.
type Registry struct {
	mu       sync.RWMutex
	allowed  []string
	handlers map[string]Handler
}

// NewRegistry creates an empty registry accepting only the given names.
// With no names, the conversation command set (domain.Commands) is used.
func NewRegistry(allowed ...string) *Registry {
	if len(allowed) == 0 {
		allowed = domain.Commands
	}
	return &Registry{
		allowed:  slices.Clone(allowed),
		handlers: make(map[string]Handler),
	}
}

// Register adds the handler for name.
// It fails for names outside the allowed set and for names already registered.
func (r *Registry) Register(name string, fn Handler) error {
	if fn == nil {
		return fmt.Errorf("nil handler for %q", name)
	}
	if !slices.Contains(r.allowed, name) {
		return fmt.Errorf("%w: %q", domain.ErrCommandNotAllowed, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateCommand, name)
	}
	r.handlers[name] = fn
	return nil
}

// MustRegister is like Register but panics on error. Meant for static wiring.
func (r *Registry) MustRegister(name string, fn Handler) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered command names in registration-independent order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for _, name := range r.allowed {
		if _, ok := r.handlers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
