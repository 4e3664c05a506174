package ports

import "context"

// Medium defines the raw persistence of a namespaced document.
// The KeyValueStore serializes its whole tree into a single document per namespace.
type Medium interface {
	// Probe checks that the medium is usable by writing and removing a test entry.
	Probe(ctx context.Context) error

	// Load retrieves the document stored under namespace.
	// Returns domain.ErrNotFound if nothing was stored yet.
	Load(ctx context.Context, namespace string) ([]byte, error)

	// Save replaces the document stored under namespace.
	Save(ctx context.Context, namespace string, data []byte) error

	// Delete removes the document stored under namespace.
	Delete(ctx context.Context, namespace string) error
}

// KeyValueStore gives nested-key access to a JSON-serializable tree.
// Names use dotted notation ("a.b.c"); an empty name addresses the whole tree.
type KeyValueStore interface {
	Get(name string, def any) any
	Set(name string, value any) error
}
