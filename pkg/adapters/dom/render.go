package dom

import (
	"fmt"

	"github.com/aretw0/responsio/pkg/domain"
)

// Render produces a standalone page showing fragments in an expanded chat window,
// styled by stylesheets. Fragments that do not parse are reported together.
func Render(title string, stylesheets []string, fragments []string) (string, error) {
	doc, err := New("")
	if err != nil {
		return "", err
	}
	doc.InstallStylesheets(stylesheets, nil)
	if title != "" {
		doc.SetTitle(title)
	}
	if err := doc.Mount(domain.DefaultSelector); err != nil {
		return "", err
	}
	doc.ToggleVisible()

	var bad int
	for _, f := range fragments {
		if err := doc.Append(f); err != nil {
			bad++
		}
	}
	out, err := doc.HTML()
	if err != nil {
		return "", err
	}
	if bad > 0 {
		return out, fmt.Errorf("%d of %d fragments could not be rendered", bad, len(fragments))
	}
	return out, nil
}
