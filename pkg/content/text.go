package content

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// PlainText strips all markup from an HTML fragment, decodes entities
// and collapses runs of whitespace into single spaces
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	text := stripPolicy.Sanitize(s)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Unescape decodes HTML entities without touching any markup
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}
