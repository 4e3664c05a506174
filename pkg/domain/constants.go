package domain

// Field constants for mapstructure and JSON standardization.
const (
	// KeyCommands is the envelope field carrying the command list.
	KeyCommands = "commands"

	// KeyInput is the chat request field carrying the user text.
	KeyInput = "input"

	// KeyError is the field a failing response uses to describe the failure.
	KeyError = "error"

	// KeyHistory is the storage path of the rendered fragment list.
	KeyHistory = "history"
)

// Namespace is the key the whole persisted document is stored under.
const Namespace = "com.paradoxwebsolutions.chatbot"
