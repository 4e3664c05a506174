package ports

// Surface is the rendering collaborator of a conversation.
// Fragments are markup strings; the surface owns their parsing and display.
type Surface interface {
	// HasAttachment reports whether selector names an existing attachment point.
	HasAttachment(selector string) bool

	// Mount attaches the chat window under selector.
	Mount(selector string) error

	// InstallStylesheets installs the given stylesheets and calls ready once they are loaded.
	InstallStylesheets(hrefs []string, ready func())

	SetTitle(title string)

	// Bind registers the input-driven event callbacks.
	Bind(events SurfaceEvents)

	// Escape turns raw text into markup-safe text, converting newlines to line breaks.
	Escape(text string) string

	// Append parses fragment and appends it to the message list.
	Append(fragment string) error

	// RemovePending removes pending placeholders and returns how many were removed.
	RemovePending() int

	// Clear removes every rendered message.
	Clear()

	ScrollToBottom()
	ToggleVisible()
}

// SurfaceEvents are the callbacks a surface fires on user interaction.
type SurfaceEvents struct {
	OnToggle func()
	OnSubmit func(text string)
}
