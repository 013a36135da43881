package pipeline

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/feedhaul/feedhaul/pkg/domain"
	"github.com/feedhaul/feedhaul/pkg/state"
)

// SortItems orders items newest first. Items without a publication time
// sort after dated ones, ties keep their incoming order.
func SortItems(items []domain.Item) {
	var zero time.Time // undated items collapse to the zero time and sink to the end
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedOr(zero).After(items[j].PublishedOr(zero))
	})
}

// SelectNew filters out items already delivered by earlier runs and
// duplicates within the batch. On a fresh state the recency window applies
// instead: dated items older than the window are dropped, undated items
// pass since there is no way to prove they are old.
func SelectNew(items []domain.Item, st state.RunState) []domain.Item {
	inBatch := make(map[string]struct{}, len(items))
	return lo.Filter(items, func(item domain.Item, _ int) bool {
		if _, ok := inBatch[item.GUID]; ok {
			return false
		}
		inBatch[item.GUID] = struct{}{}

		if st.Contains(item.GUID) {
			return false
		}
		if st.Fresh && item.Published != nil && item.Published.Before(st.LastRun) {
			return false
		}
		return true
	})
}
