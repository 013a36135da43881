package sink

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedhaul/feedhaul/pkg/domain"
)

func makeTestArchive(t *testing.T) *Archive {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "archive.db")
	a, err := NewArchive(ArchiveConfig{DSN: "file:" + dbPath + "?cache=shared&mode=rwc"})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})
	return a
}

func TestArchive_Write(t *testing.T) {
	a := makeTestArchive(t)
	assert.Equal(t, "archive", a.Name())

	published := time.Date(2023, time.June, 15, 10, 30, 0, 0, time.UTC)
	items := []domain.Item{
		{
			GUID:        "https://example.com/a",
			Title:       "First",
			Link:        "https://example.com/a",
			Description: "desc",
			ImageURL:    "https://example.com/a.jpg",
			Category:    "Tech",
			Published:   &published,
			Source:      "Feed1",
		},
		{GUID: "https://example.com/b", Title: "Second", Link: "https://example.com/b", Source: "Feed2"},
	}

	stored, err := a.Write(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	var count int
	require.NoError(t, a.db.Get(&count, "SELECT count(*) FROM items"))
	assert.Equal(t, 2, count)

	var got itemSQL
	require.NoError(t, a.db.Get(&got, "SELECT guid, title, link, description, image_url, category, published, source FROM items WHERE guid = ?", "https://example.com/a"))
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, "Tech", got.Category)
	require.NotNil(t, got.Published)
	assert.True(t, got.Published.Equal(published))

	require.NoError(t, a.db.Get(&got, "SELECT guid, title, link, description, image_url, category, published, source FROM items WHERE guid = ?", "https://example.com/b"))
	assert.Nil(t, got.Published)
}

func TestArchive_Write_SkipsDuplicates(t *testing.T) {
	a := makeTestArchive(t)

	items := []domain.Item{
		{GUID: "https://example.com/a", Title: "First"},
		{GUID: "https://example.com/b", Title: "Second"},
	}

	stored, err := a.Write(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	// replay of the same batch stores nothing and is not an error
	stored, err = a.Write(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)

	// a mixed batch stores only the new item
	stored, err = a.Write(context.Background(), append(items, domain.Item{GUID: "https://example.com/c", Title: "Third"}))
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	var count int
	require.NoError(t, a.db.Get(&count, "SELECT count(*) FROM items"))
	assert.Equal(t, 3, count)
}

func TestArchive_Write_Empty(t *testing.T) {
	a := makeTestArchive(t)
	stored, err := a.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestNewArchive_DefaultDSN(t *testing.T) {
	// empty DSN falls back to a file in the working directory, point the
	// test at a temp dir to keep the tree clean
	t.Chdir(t.TempDir())

	a, err := NewArchive(ArchiveConfig{MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	require.NoError(t, a.Close())
}
