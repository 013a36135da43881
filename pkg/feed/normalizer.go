package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/feedhaul/feedhaul/pkg/content"
	"github.com/feedhaul/feedhaul/pkg/domain"
)

// identity derivation modes
const (
	IdentityLink = "link"
	IdentityHash = "hash"
)

// placeholder used when an entry carries no usable title
const noTitle = "No Title"

// Normalizer turns raw entries into canonical items
type Normalizer struct {
	identityMode string
}

// NewNormalizer creates a normalizer. The mode selects how item identity
// is derived: IdentityLink keys on the entry link with a hash fallback for
// link-less entries, IdentityHash always hashes title and link.
func NewNormalizer(identityMode string) *Normalizer {
	return &Normalizer{identityMode: identityMode}
}

// Normalize produces exactly one item for the entry. Malformed input
// degrades to placeholder or empty values, it never fails.
func (n *Normalizer) Normalize(entry RawEntry, src domain.Feed) domain.Item {
	title := content.PlainText(entry.Title)
	if title == "" {
		title = noTitle
	}

	link := strings.TrimSpace(entry.Link)

	category := content.PlainText(entry.Category)
	if category == "" {
		category = src.Category
	}

	return domain.Item{
		GUID:        n.identity(title, link, src.Name),
		Title:       title,
		Link:        link,
		Description: content.PlainText(entry.Description),
		ImageURL:    content.FirstImage(entry.Description),
		Category:    category,
		Published:   parseWhen(entry.Published),
		Source:      src.Name,
	}
}

// identity derives the deduplication key, stable for the same entry
// across runs and restarts
func (n *Normalizer) identity(title, link, source string) string {
	if n.identityMode == IdentityHash {
		return contentHash(title, link)
	}
	if link != "" {
		return link
	}
	// distinct link-less items must not collapse into one identity
	return contentHash(title, source)
}

// contentHash builds a stable hex digest from the given parts
func contentHash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("|"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// parseWhen parses a feed-native timestamp, nil when missing or not
// recognizable as a date
func parseWhen(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	return &ts
}
