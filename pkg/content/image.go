package content

import (
	"strings"

	"golang.org/x/net/html"
)

// FirstImage returns the src attribute of the first img tag found in an
// HTML fragment, or empty string when there is none. The tokenizer never
// fails on malformed markup, it just stops at the end of input.
func FirstImage(s string) string {
	if !strings.Contains(strings.ToLower(s), "<img") {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "src" {
					if src := strings.TrimSpace(string(val)); src != "" {
						return src
					}
				}
				if !more {
					break
				}
			}
		}
	}
}
