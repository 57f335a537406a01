package contentapi

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// CuratedOrderingEngine orders tagged collections, consulting curated lists
// when asked to.
type CuratedOrderingEngine struct {
	store Store
}

// NewCuratedOrderingEngine creates an ordering engine backed by store.
func NewCuratedOrderingEngine(store Store) *CuratedOrderingEngine {
	return &CuratedOrderingEngine{store: store}
}

// Order returns items in the order mode requires. For curated mode the list
// curated for exactly tagIDs is looked up; without one the order is
// alphabetical. Order never drops items.
func (e *CuratedOrderingEngine) Order(ctx context.Context, items []ContentItem, tagIDs []string, mode SortMode) ([]ContentItem, error) {
	var curated []uuid.UUID
	if mode == SortCurated && len(tagIDs) > 0 {
		list, err := e.store.FindCuratedList(ctx, tagIDs)
		if err != nil {
			return nil, err
		}
		if list != nil {
			curated = list.ItemIDs
		}
	}
	return SortItems(items, mode, curated), nil
}

// SortItems is the pure ordering function behind Order. It returns a new
// slice and leaves items untouched.
//
// date sorts by creation time, newest first, keeping input order for ties.
// Every other mode sorts by (position in curated, name, slug), where items
// missing from curated share the position len(curated).
func SortItems(items []ContentItem, mode SortMode, curated []uuid.UUID) []ContentItem {
	out := make([]ContentItem, len(items))
	copy(out, items)

	if mode == SortDate {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return out
	}

	rank := make(map[uuid.UUID]int, len(curated))
	for i, id := range curated {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	position := func(item *ContentItem) int {
		if i, ok := rank[item.ID]; ok {
			return i
		}
		return len(curated)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := position(&out[i]), position(&out[j])
		if pi != pj {
			return pi < pj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
