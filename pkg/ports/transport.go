package ports

import (
	"context"

	"github.com/aretw0/responsio/pkg/domain"
)

// Transport performs a request against the chat service.
// It never returns an error: failures are normalized into Result.Failure.
type Transport interface {
	Do(ctx context.Context, req domain.Request) domain.Result
}

// Scheduler runs callbacks one at a time on the conversation thread.
type Scheduler interface {
	// Post queues fn. It returns false if the scheduler no longer accepts work.
	Post(fn func()) bool

	// Async runs work off the conversation thread and posts the continuation it returns.
	Async(work func() func())
}
