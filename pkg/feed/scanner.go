package feed

import "strings"

// Scanner extracts entries from RSS/Atom-like documents without a full XML
// parser. Feeds in the wild are frequently not well-formed, so the strategy
// is deliberately relaxed: split the document on item/entry boundaries, then
// pull known fields out of each segment by tag name. Unexpected nesting,
// missing closing tags and stray markup never fail the scan, a field that
// cannot be located is left empty.
type Scanner struct {
	maxItems int
}

// NewScanner creates a scanner capped at maxItems entries per document,
// zero means no cap
func NewScanner(maxItems int) *Scanner {
	return &Scanner{maxItems: maxItems}
}

// Scan returns entries in document order, at most maxItems of them.
// A document without recognizable item or entry tags yields nothing.
func (s *Scanner) Scan(raw string) []RawEntry {
	lower := lowerASCII(raw)

	starts := tagStarts(lower, "<item")
	if len(starts) == 0 {
		starts = tagStarts(lower, "<entry")
	}
	if len(starts) == 0 {
		return nil
	}

	count := len(starts)
	if s.maxItems > 0 && count > s.maxItems {
		count = s.maxItems
	}

	entries := make([]RawEntry, 0, count)
	for i := 0; i < count; i++ {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sg := segment{raw: raw[starts[i]:end], lower: lower[starts[i]:end]}
		entries = append(entries, sg.entry())
	}
	return entries
}

// segment is one item/entry slice of the document, kept in original and
// ascii-lowered form so searches are case-insensitive while extracted
// values preserve the source casing
type segment struct {
	raw   string
	lower string
}

func (sg segment) entry() RawEntry {
	return RawEntry{
		Title:       sg.firstTagText("title"),
		Link:        sg.linkValue(),
		Description: sg.firstTagText("description", "summary", "content:encoded", "content"),
		Published:   sg.firstTagText("pubdate", "published", "updated", "dc:date"),
		Category:    sg.categoryValue(),
	}
}

// firstTagText returns the text of the first tag present from the given
// name list, empty string when none carries text
func (sg segment) firstTagText(names ...string) string {
	for _, name := range names {
		if text, ok := sg.tagText(name); ok && text != "" {
			return text
		}
	}
	return ""
}

// tagText returns the text content of the first occurrence of the named
// tag. The boolean is false when the tag is absent or its closing tag
// cannot be found, a self-closing tag reports present with empty text.
func (sg segment) tagText(name string) (string, bool) {
	open, after, ok := sg.openTag(name, 0)
	if !ok {
		return "", false
	}
	if strings.HasSuffix(open, "/>") {
		return "", true
	}
	closeIdx := sg.closeTag(name, after)
	if closeIdx < 0 {
		return "", false
	}
	return unwrapCDATA(strings.TrimSpace(sg.raw[after:closeIdx])), true
}

// linkValue handles both RSS style <link>url</link> and Atom style
// <link href="url"/>. Atom entries often carry several link tags
// (alternate, self, enclosure), the alternate one wins.
func (sg segment) linkValue() string {
	if text, ok := sg.tagText("link"); ok && text != "" {
		return text
	}

	first := ""
	for from := 0; ; {
		tag, after, ok := sg.openTag("link", from)
		if !ok {
			break
		}
		if href := attrValue(tag, "href"); href != "" {
			rel := attrValue(tag, "rel")
			if rel == "" || rel == "alternate" {
				return href
			}
			if first == "" {
				first = href
			}
		}
		from = after
	}
	return first
}

// categoryValue handles RSS style <category>text</category> and Atom
// style <category term="text"/>
func (sg segment) categoryValue() string {
	if text, ok := sg.tagText("category"); ok && text != "" {
		return text
	}
	if tag, _, ok := sg.openTag("category", 0); ok {
		return attrValue(tag, "term")
	}
	return ""
}

// openTag finds the first open tag with the given name at or after from,
// returning the full tag text and the offset right past its closing '>'
func (sg segment) openTag(name string, from int) (tag string, after int, ok bool) {
	marker := "<" + name
	for {
		i := strings.Index(sg.lower[from:], marker)
		if i < 0 {
			return "", 0, false
		}
		pos := from + i
		nameEnd := pos + len(marker)
		if nameEnd < len(sg.lower) && !isTagBoundary(sg.lower[nameEnd]) {
			from = nameEnd
			continue
		}
		gt := strings.IndexByte(sg.lower[nameEnd:], '>')
		if gt < 0 {
			return "", 0, false
		}
		end := nameEnd + gt + 1
		return sg.raw[pos:end], end, true
	}
}

// closeTag finds the position of the closing tag for name at or after
// from, -1 when missing
func (sg segment) closeTag(name string, from int) int {
	marker := "</" + name
	for {
		i := strings.Index(sg.lower[from:], marker)
		if i < 0 {
			return -1
		}
		pos := from + i
		end := pos + len(marker)
		if end >= len(sg.lower) || isTagBoundary(sg.lower[end]) {
			return pos
		}
		from = end
	}
}

// tagStarts collects start offsets of every occurrence of marker followed
// by a tag boundary, so "<item" matches "<item>" but not "<items>"
func tagStarts(lower, marker string) []int {
	var starts []int
	for from := 0; ; {
		i := strings.Index(lower[from:], marker)
		if i < 0 {
			return starts
		}
		pos := from + i
		end := pos + len(marker)
		if end >= len(lower) || isTagBoundary(lower[end]) {
			starts = append(starts, pos)
		}
		from = end
	}
}

func unwrapCDATA(s string) string {
	const prefix, suffix = "<![CDATA[", "]]>"
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) && len(s) >= len(prefix)+len(suffix) {
		return strings.TrimSpace(s[len(prefix) : len(s)-len(suffix)])
	}
	return s
}

// attrValue pulls an attribute value out of a tag's text, tolerating
// missing quotes and arbitrary spacing around '='
func attrValue(tag, name string) string {
	lower := lowerASCII(tag)
	for from := 0; ; {
		i := strings.Index(lower[from:], name)
		if i < 0 {
			return ""
		}
		pos := from + i
		if pos > 0 && isNameChar(lower[pos-1]) {
			from = pos + len(name)
			continue
		}
		rest := pos + len(name)
		for rest < len(tag) && isSpace(tag[rest]) {
			rest++
		}
		if rest >= len(tag) || tag[rest] != '=' {
			from = pos + len(name)
			continue
		}
		rest++
		for rest < len(tag) && isSpace(tag[rest]) {
			rest++
		}
		if rest >= len(tag) {
			return ""
		}
		quote := tag[rest]
		if quote != '"' && quote != '\'' {
			// unquoted value runs to the next space or tag end, stopping at
			// '/' would cut url values short
			end := rest
			for end < len(tag) && !isSpace(tag[end]) && tag[end] != '>' {
				end++
			}
			return tag[rest:end]
		}
		rest++
		end := strings.IndexByte(tag[rest:], quote)
		if end < 0 {
			return ""
		}
		return tag[rest : rest+end]
	}
}

// lowerASCII lowers only ASCII letters so byte offsets stay aligned with
// the original string, full unicode lowering can change byte lengths
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func isTagBoundary(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n' || c == '\r'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':'
}
