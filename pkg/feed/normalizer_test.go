package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

func TestNormalizer_Normalize(t *testing.T) {
	src := domain.Feed{Name: "TechNews", URL: "https://example.com/feed", Category: "Tech"}

	t.Run("full entry", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		entry := RawEntry{
			Title:       "Breaking &amp; Entering",
			Link:        " https://example.com/article1 ",
			Description: `<p>Some <b>bold</b> news</p><img src="https://example.com/pic.jpg">`,
			Published:   "Mon, 02 Jan 2006 15:04:05 -0700",
			Category:    "Security",
		}

		item := n.Normalize(entry, src)
		assert.Equal(t, "https://example.com/article1", item.GUID)
		assert.Equal(t, "Breaking & Entering", item.Title)
		assert.Equal(t, "https://example.com/article1", item.Link)
		assert.Equal(t, "Some bold news", item.Description)
		assert.Equal(t, "https://example.com/pic.jpg", item.ImageURL)
		assert.Equal(t, "Security", item.Category)
		assert.Equal(t, "TechNews", item.Source)

		require.NotNil(t, item.Published)
		assert.Equal(t, time.Date(2006, time.January, 2, 22, 4, 5, 0, time.UTC), item.Published.UTC())
	})

	t.Run("missing title gets placeholder", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Link: "https://example.com/untitled"}, src)
		assert.Equal(t, "No Title", item.Title)
	})

	t.Run("markup-only title gets placeholder", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "<span></span>", Link: "https://example.com/a"}, src)
		assert.Equal(t, "No Title", item.Title)
	})

	t.Run("category falls back to feed category", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "t", Link: "https://example.com/a"}, src)
		assert.Equal(t, "Tech", item.Category)
	})

	t.Run("atom timestamp", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "t", Link: "https://example.com/a", Published: "2023-06-15T10:30:00Z"}, src)
		require.NotNil(t, item.Published)
		assert.Equal(t, time.Date(2023, time.June, 15, 10, 30, 0, 0, time.UTC), item.Published.UTC())
	})

	t.Run("unparsable timestamp", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "t", Link: "https://example.com/a", Published: "sometime last week"}, src)
		assert.Nil(t, item.Published)
	})

	t.Run("empty timestamp", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "t", Link: "https://example.com/a"}, src)
		assert.Nil(t, item.Published)
	})
}

func TestNormalizer_Identity(t *testing.T) {
	src := domain.Feed{Name: "TechNews", Category: "Tech"}

	t.Run("link mode uses link", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "hello", Link: "https://example.com/a"}, src)
		assert.Equal(t, "https://example.com/a", item.GUID)
	})

	t.Run("link mode falls back to hash without link", func(t *testing.T) {
		n := NewNormalizer(IdentityLink)
		item := n.Normalize(RawEntry{Title: "hello"}, src)
		assert.Len(t, item.GUID, 64)
		assert.Regexp(t, "^[0-9a-f]+$", item.GUID)

		// same title from another source must not collapse
		other := n.Normalize(RawEntry{Title: "hello"}, domain.Feed{Name: "OtherFeed"})
		assert.NotEqual(t, item.GUID, other.GUID)

		// but the identity itself is stable
		again := n.Normalize(RawEntry{Title: "hello"}, src)
		assert.Equal(t, item.GUID, again.GUID)
	})

	t.Run("hash mode ignores guid-ready link", func(t *testing.T) {
		n := NewNormalizer(IdentityHash)
		item := n.Normalize(RawEntry{Title: "hello", Link: "https://example.com/a"}, src)
		assert.NotEqual(t, "https://example.com/a", item.GUID)
		assert.Len(t, item.GUID, 64)

		// derived from title and link, stable across runs
		again := n.Normalize(RawEntry{Title: "hello", Link: "https://example.com/a"}, src)
		assert.Equal(t, item.GUID, again.GUID)

		different := n.Normalize(RawEntry{Title: "hello", Link: "https://example.com/b"}, src)
		assert.NotEqual(t, item.GUID, different.GUID)
	})
}
