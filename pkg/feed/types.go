package feed

// RawEntry is one feed item as extracted from markup, before normalization.
// All fields are raw strings taken from the document, entities and embedded
// markup included. A missing field is just an empty string.
type RawEntry struct {
	Title       string
	Link        string
	Description string
	Published   string
	Category    string
}
