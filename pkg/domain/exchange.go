package domain

import (
	"fmt"
	"net/url"
)

// Request describes one call to the chat service.
type Request struct {
	Method   string
	Endpoint string     // Absolute URL, or a path relative to the service base
	Params   url.Values // GET query parameters
	Payload  any        // POST body, encoded as JSON
	Options  RequestOptions
}

// RequestOptions overrides the default content negotiation of a request.
type RequestOptions struct {
	Type     string // POST Content-Type
	Encoding string // POST Content-Transfer-Encoding
	Accept   string // GET Accept
}

// Result is the outcome of a Request: either a decoded payload or a Failure.
type Result struct {
	Status  int
	Payload any
	Failure *Failure
}

// OK reports whether the request took the success path.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Commands extracts the command list from an envelope payload.
// It returns nil when the payload is not an object, which the executor reports as invalid.
func (r Result) Commands() any {
	obj, ok := r.Payload.(map[string]any)
	if !ok {
		return nil
	}
	return obj[KeyCommands]
}

// Failure is the normalized failure of a request: a status code and a message.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%d: %s", f.Status, f.Message)
}

// Messages used for failures that carry no server-provided description.
const (
	MessageInternalError       = "Internal Error"
	MessageInternalServerError = "Internal Server Error"
	MessageRequestTimeout      = "Request Timeout"
)
