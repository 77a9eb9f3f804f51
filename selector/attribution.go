package selector

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from an attribution and decodes entities.
// Attributions come from the catalog document and are not trusted.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}
	s := html.UnescapeString(strict.Sanitize(markup))
	return strings.Join(strings.Fields(s), " ")
}
