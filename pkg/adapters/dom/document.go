// Package dom renders the chat window into an HTML document held in memory.
//
// Document implements ports.Surface on top of goquery. User interaction is
// simulated through Click, Enter and LoadStyles, which fire the bound callbacks
// the way browser events would.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/ports"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlankPage is the page used when none is given.
const BlankPage = `<!DOCTYPE html><html><head></head><body></body></html>`

// window is the chat window markup. It stays detached from the page until Mount.
var window = fmt.Sprintf(`<div id="%s" class="%s">
<div class="%s"></div>
<div class="%s">Title</div>
<div class="%s"></div>
<div class="%s"><textarea placeholder="Enter your message..."></textarea></div>
</div>`, domain.WindowID, domain.ClassWindow, domain.ClassHandle, domain.ClassTitle, domain.ClassChat, domain.ClassFooter)

// ErrNotMounted is returned when the window is mounted a second time or the
// attachment point disappeared.
var ErrNotMounted = errors.New("window cannot be mounted")

// Document is an in-memory page hosting the chat window. It is not safe for
// concurrent use; drive it from the conversation thread.
type Document struct {
	page  *goquery.Document
	win   *goquery.Selection
	chat  *goquery.Selection
	title *goquery.Selection
	input *goquery.Selection

	events  ports.SurfaceEvents
	ready   []func()
	mounted bool
	scrolls int
}

// New parses page and prepares a detached chat window. An empty page means BlankPage.
func New(page string) (*Document, error) {
	if page == "" {
		page = BlankPage
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	tmpl, err := goquery.NewDocumentFromReader(strings.NewReader(window))
	if err != nil {
		return nil, fmt.Errorf("failed to parse window: %w", err)
	}

	win := tmpl.Find("#" + domain.WindowID).First()
	return &Document{
		page:  doc,
		win:   win,
		chat:  win.Find("." + domain.ClassChat).First(),
		title: win.Find("." + domain.ClassTitle).First(),
		input: win.Find("textarea").First(),
	}, nil
}

// HasAttachment reports whether selector matches an element of the page.
func (d *Document) HasAttachment(selector string) bool {
	return d.page.Find(selector).Length() > 0
}

// Mount appends the window to the first element matching selector.
func (d *Document) Mount(selector string) error {
	if d.mounted {
		return fmt.Errorf("%w: already mounted", ErrNotMounted)
	}
	target := d.page.Find(selector).First()
	if target.Length() == 0 {
		return fmt.Errorf("%w: %w %q", ErrNotMounted, domain.ErrNoAttachment, selector)
	}
	win := d.win.Get(0)
	if win.Parent != nil {
		win.Parent.RemoveChild(win)
	}
	target.AppendNodes(win)
	d.mounted = true
	return nil
}

// InstallStylesheets adds one link element per href to the page head.
// ready runs on the next LoadStyles.
func (d *Document) InstallStylesheets(hrefs []string, ready func()) {
	head := d.page.Find("head").First()
	for _, href := range hrefs {
		head.AppendNodes(&html.Node{
			Type:     html.ElementNode,
			Data:     "link",
			DataAtom: atom.Link,
			Attr: []html.Attribute{
				{Key: "id", Val: domain.StyleID},
				{Key: "rel", Val: "stylesheet"},
				{Key: "type", Val: "text/css"},
				{Key: "href", Val: href},
			},
		})
	}
	if ready != nil {
		d.ready = append(d.ready, ready)
	}
}

func (d *Document) SetTitle(title string) {
	d.title.SetText(title)
}

func (d *Document) Bind(events ports.SurfaceEvents) {
	d.events = events
}

func (d *Document) Escape(text string) string {
	return Escape(text)
}

// Append parses fragment in the context of the message list and appends its
// first element. Text outside that element is dropped.
func (d *Document) Append(fragment string) error {
	node, err := parseElement(d.chat.Get(0), fragment)
	if err != nil {
		return err
	}
	d.chat.AppendNodes(node)
	return nil
}

func (d *Document) RemovePending() int {
	pending := d.chat.Find("." + domain.ClassPending)
	n := pending.Length()
	pending.Remove()
	return n
}

func (d *Document) Clear() {
	d.chat.Empty()
}

// ScrollToBottom has no layout to act on; it is counted instead.
func (d *Document) ScrollToBottom() {
	d.scrolls++
}

func (d *Document) ToggleVisible() {
	d.win.ToggleClass(domain.ClassShow)
}

// Click simulates a click on the window handle.
func (d *Document) Click() {
	if d.events.OnToggle != nil {
		d.events.OnToggle()
	}
}

// Enter simulates typing text in the input and pressing enter.
// The input is cleared when a message is submitted, as the widget does.
func (d *Document) Enter(text string) {
	d.input.SetText(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	d.input.SetText("")
	if d.events.OnSubmit != nil {
		d.events.OnSubmit(text)
	}
}

// LoadStyles simulates the load event of the installed stylesheets.
func (d *Document) LoadStyles() {
	ready := d.ready
	d.ready = nil
	for _, fn := range ready {
		fn()
	}
}

// Mounted reports whether the window is attached to the page.
func (d *Document) Mounted() bool {
	return d.mounted
}

// Visible reports whether the window is expanded.
func (d *Document) Visible() bool {
	return d.win.HasClass(domain.ClassShow)
}

// Title returns the window title.
func (d *Document) Title() string {
	return d.title.Text()
}

// Scrolls returns how many times the message list was scrolled to the bottom.
func (d *Document) Scrolls() int {
	return d.scrolls
}

// Stylesheets returns the href of every stylesheet link in the page head.
func (d *Document) Stylesheets() []string {
	var hrefs []string
	d.page.Find(`head link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// Messages returns the markup of each rendered message, in order.
func (d *Document) Messages() []string {
	messages := []string{}
	d.chat.Children().Each(func(_ int, s *goquery.Selection) {
		if out, err := goquery.OuterHtml(s); err == nil {
			messages = append(messages, out)
		}
	})
	return messages
}

// HTML serializes the whole page.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.page.Selection)
}

// textEscaper escapes what an XML serializer escapes in a text node; quotes are
// left alone so that persisted fragments match those of the browser widget.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\n", "<br/>")

// Escape makes text safe to embed as element content. Newlines become line breaks.
func Escape(text string) string {
	return textEscaper.Replace(text)
}

func parseElement(context *html.Node, fragment string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, fmt.Errorf("fragment has no element: %q", fragment)
}
