package domain

import "fmt"

// Command names understood by the conversation.
const (
	CommandInit    = "init"
	CommandRestore = "restore"
	CommandReset   = "reset"
	CommandText    = "text"
)

// Commands is the closed set of names a conversation accepts handlers for.
var Commands = []string{CommandInit, CommandRestore, CommandReset, CommandText}

// Command is a single server-issued instruction.
// It has no identity beyond its position in the response array.
type Command struct {
	Command string `json:"command" mapstructure:"command"`
	Data    any    `json:"data,omitempty" mapstructure:"data"`
}

func (c Command) String() string {
	if c.Data == nil {
		return fmt.Sprintf("{command: %q}", c.Command)
	}
	return fmt.Sprintf("{command: %q, data: %v}", c.Command, c.Data)
}

// Envelope is the response body of both the init and chat endpoints.
type Envelope struct {
	Commands []Command `json:"commands"`
}

// InitOptions configures the chat surface. Delivered as the data of an "init" command.
type InitOptions struct {
	Style    string `json:"style,omitempty" mapstructure:"style"`
	Selector string `json:"selector,omitempty" mapstructure:"selector"`
	Title    string `json:"title,omitempty" mapstructure:"title"`
}

// Defaults for InitOptions fields left empty by the server.
const (
	DefaultStyle    = "default"
	DefaultSelector = "body"
)

// WithDefaults returns a copy with empty fields replaced by their defaults.
func (o InitOptions) WithDefaults() InitOptions {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Selector == "" {
		o.Selector = DefaultSelector
	}
	return o
}
