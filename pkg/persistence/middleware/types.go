// Package middleware decorates storage media.
package middleware

import "github.com/aretw0/responsio/pkg/ports"

// Middleware allows wrapping a Medium to add behavior.
type Middleware func(ports.Medium) ports.Medium

// Chain applies middlewares so that the first one is the outermost.
func Chain(medium ports.Medium, mws ...Middleware) ports.Medium {
	for i := len(mws) - 1; i >= 0; i-- {
		medium = mws[i](medium)
	}
	return medium
}
