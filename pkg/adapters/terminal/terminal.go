// Package terminal renders the chat in a text terminal.
//
// Fragments are the same markup the browser widget renders; the terminal reads
// back their role and text and prints them as styled lines. Bot replies are
// rendered as markdown when the output is a terminal.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/responsio/internal/presentation/tui"
	"github.com/aretw0/responsio/pkg/adapters/dom"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Role is the author of a rendered message.
type Role int

const (
	RoleUnknown Role = iota
	RoleUser
	RoleBot
	RolePending
)

// Message is a fragment read back as plain text.
type Message struct {
	Role Role
	Text string
}

// Terminal implements ports.Surface on a line-oriented terminal.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	output *termenv.Output

	render   func(string) (string, error)
	markdown *bool

	userStyle  lipgloss.Style
	botStyle   lipgloss.Style
	dimStyle   lipgloss.Style
	titleStyle lipgloss.Style

	mu      sync.Mutex
	events  ports.SurfaceEvents
	title   string
	pending int
	hidden  bool
}

// Option defines a functional option for configuring the Terminal.
type Option func(*Terminal)

// WithInput sets where user lines are read from (default: stdin).
func WithInput(in io.Reader) Option {
	return func(t *Terminal) {
		t.in = in
	}
}

// WithOutput sets where messages are printed (default: stdout).
func WithOutput(out io.Writer) Option {
	return func(t *Terminal) {
		t.out = out
	}
}

// WithMarkdown forces markdown rendering of bot replies on or off.
// By default it is on only when the output is a terminal.
func WithMarkdown(enabled bool) Option {
	return func(t *Terminal) {
		t.markdown = &enabled
	}
}

// New creates a terminal surface.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		in:  os.Stdin,
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(t)
	}

	enabled := isTerminal(t.out)
	if t.markdown != nil {
		enabled = *t.markdown
	}
	if enabled {
		t.render = tui.NewRenderer(width(t.out))
	}

	t.output = termenv.NewOutput(t.out)
	r := lipgloss.NewRenderer(t.out)
	t.userStyle = r.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"})
	t.botStyle = r.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C084FC"})
	t.dimStyle = r.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	t.titleStyle = r.NewStyle().Bold(true).Underline(true)
	return t
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// width returns the terminal width of out, defaulting to 80.
func width(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// HasAttachment is always true: the terminal itself is the attachment point.
func (t *Terminal) HasAttachment(string) bool {
	return true
}

// Mount prints the window title.
func (t *Terminal) Mount(string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	title := t.title
	if title == "" {
		title = "Chat"
	}
	_, err := fmt.Fprintln(t.out, t.titleStyle.Render(title))
	return err
}

// InstallStylesheets has nothing to load; ready runs immediately.
func (t *Terminal) InstallStylesheets(_ []string, ready func()) {
	if ready != nil {
		ready()
	}
}

func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
}

func (t *Terminal) Bind(events ports.SurfaceEvents) {
	t.mu.Lock()
	t.events = events
	t.mu.Unlock()
}

func (t *Terminal) Escape(text string) string {
	return dom.Escape(text)
}

// Append prints the message carried by fragment. While hidden, only the pending count is tracked.
func (t *Terminal) Append(fragment string) error {
	msg, err := Parse(fragment)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if msg.Role == RolePending {
		t.pending++
	}
	if t.hidden {
		return nil
	}
	_, err = io.WriteString(t.out, t.format(msg))
	return err
}

func (t *Terminal) format(msg Message) string {
	switch msg.Role {
	case RoleUser:
		return t.userStyle.Render("you") + " " + msg.Text + "\n"
	case RoleBot:
		text := msg.Text
		if t.render != nil {
			if rendered, err := t.render(text); err == nil {
				return t.botStyle.Render("bot") + "\n" + rendered
			}
		}
		return t.botStyle.Render("bot") + " " + text + "\n"
	case RolePending:
		return t.dimStyle.Render("…") + "\n"
	default:
		return msg.Text + "\n"
	}
}

// RemovePending forgets outstanding placeholders. Printed lines stay on screen.
func (t *Terminal) RemovePending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.pending
	t.pending = 0
	return n
}

// Clear clears the screen when the output is a terminal.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = 0
	if isTerminal(t.out) {
		t.output.ClearScreen()
	}
}

// ScrollToBottom is implicit in a line-oriented terminal.
func (t *Terminal) ScrollToBottom() {}

// ToggleVisible mutes or unmutes message printing.
func (t *Terminal) ToggleVisible() {
	t.mu.Lock()
	t.hidden = !t.hidden
	t.mu.Unlock()
}

// Listen reads input lines and submits each one until the input ends or ctx is done.
// The line "/toggle" fires the toggle callback instead.
func (t *Terminal) Listen(ctx context.Context) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			t.dispatch(line)
		}
	}
}

func (t *Terminal) dispatch(line string) {
	t.mu.Lock()
	events := t.events
	t.mu.Unlock()

	if strings.TrimSpace(line) == "/toggle" {
		if events.OnToggle != nil {
			events.OnToggle()
		}
		return
	}
	if events.OnSubmit != nil {
		events.OnSubmit(line)
	}
}

// Parse reads the role and text of a message fragment. Line breaks become newlines.
func Parse(fragment string) (Message, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Message{}, fmt.Errorf("failed to parse fragment: %w", err)
	}
	node := doc.Find("body").Children().First()
	if node.Length() == 0 {
		return Message{}, fmt.Errorf("fragment has no element: %q", fragment)
	}

	node.Find("br").ReplaceWithHtml("\n")
	msg := Message{Text: node.Text()}
	switch {
	case node.HasClass(domain.ClassPending):
		msg.Role = RolePending
	case node.HasClass(domain.ClassUser):
		msg.Role = RoleUser
	case node.HasClass(domain.ClassBot):
		msg.Role = RoleBot
	}
	return msg, nil
}

// Transcript reads back every fragment, skipping those that do not parse.
func Transcript(fragments []string) []Message {
	messages := make([]Message, 0, len(fragments))
	for _, f := range fragments {
		if msg, err := Parse(f); err == nil {
			messages = append(messages, msg)
		}
	}
	return messages
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleBot:
		return "bot"
	case RolePending:
		return "pending"
	default:
		return "unknown"
	}
}
