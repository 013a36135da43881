package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feedhaul/feedhaul/pkg/domain"
	"github.com/feedhaul/feedhaul/pkg/pipeline"
	"github.com/feedhaul/feedhaul/pkg/state"
)

func tsPtr(t time.Time) *time.Time { return &t }

func TestSortItems(t *testing.T) {
	base := time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC)
	items := []domain.Item{
		{GUID: "old", Published: tsPtr(base.Add(-2 * time.Hour))},
		{GUID: "undated-1"},
		{GUID: "newest", Published: tsPtr(base)},
		{GUID: "undated-2"},
		{GUID: "middle", Published: tsPtr(base.Add(-time.Hour))},
	}

	pipeline.SortItems(items)

	got := make([]string, len(items))
	for i, item := range items {
		got[i] = item.GUID
	}
	// newest first, undated items keep their relative order at the end
	assert.Equal(t, []string{"newest", "middle", "old", "undated-1", "undated-2"}, got)
}

func TestSortItems_StableTies(t *testing.T) {
	base := time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC)
	items := []domain.Item{
		{GUID: "a", Published: tsPtr(base)},
		{GUID: "b", Published: tsPtr(base)},
		{GUID: "c", Published: tsPtr(base)},
	}

	pipeline.SortItems(items)

	assert.Equal(t, "a", items[0].GUID)
	assert.Equal(t, "b", items[1].GUID)
	assert.Equal(t, "c", items[2].GUID)
}

func TestSelectNew(t *testing.T) {
	now := time.Now()

	t.Run("filters seen identities", func(t *testing.T) {
		st := state.RunState{LastRun: now.Add(-time.Hour), Seen: map[string]struct{}{"seen": {}}}
		items := []domain.Item{
			{GUID: "seen", Published: tsPtr(now)},
			{GUID: "new", Published: tsPtr(now)},
			{GUID: "undated"},
		}

		got := pipeline.SelectNew(items, st)
		assert.Len(t, got, 2)
		assert.Equal(t, "new", got[0].GUID)
		assert.Equal(t, "undated", got[1].GUID)
	})

	t.Run("drops duplicates within batch", func(t *testing.T) {
		st := state.RunState{LastRun: now.Add(-time.Hour)}
		items := []domain.Item{
			{GUID: "a", Title: "first occurrence"},
			{GUID: "a", Title: "same story from another feed"},
			{GUID: "b"},
		}

		got := pipeline.SelectNew(items, st)
		assert.Len(t, got, 2)
		assert.Equal(t, "first occurrence", got[0].Title)
	})

	t.Run("fresh state applies recency window", func(t *testing.T) {
		st := state.RunState{LastRun: now.Add(-24 * time.Hour), Seen: map[string]struct{}{}, Fresh: true}
		items := []domain.Item{
			{GUID: "recent", Published: tsPtr(now.Add(-time.Hour))},
			{GUID: "stale", Published: tsPtr(now.Add(-48 * time.Hour))},
			{GUID: "undated"},
		}

		got := pipeline.SelectNew(items, st)
		assert.Len(t, got, 2)
		assert.Equal(t, "recent", got[0].GUID)
		assert.Equal(t, "undated", got[1].GUID)
	})

	t.Run("window ignored on settled state", func(t *testing.T) {
		st := state.RunState{LastRun: now.Add(-24 * time.Hour), Seen: map[string]struct{}{}}
		items := []domain.Item{
			{GUID: "ancient", Published: tsPtr(now.Add(-30 * 24 * time.Hour))},
		}

		// with usable state the seen set alone decides, age doesn't matter
		got := pipeline.SelectNew(items, st)
		assert.Len(t, got, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		got := pipeline.SelectNew(nil, state.RunState{})
		assert.Empty(t, got)
	})
}
