package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/content-api/pkg/contentapi"
)

// Repository implements contentapi.Store using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	tags         []contentapi.Tag
	items        map[uuid.UUID]*contentapi.ContentItem
	itemsBySlug  map[string]uuid.UUID
	editions     map[uuid.UUID][]contentapi.Edition // item_id -> editions in insertion order
	curatedLists []contentapi.CuratedList
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items:       make(map[uuid.UUID]*contentapi.ContentItem),
		itemsBySlug: make(map[string]uuid.UUID),
		editions:    make(map[uuid.UUID][]contentapi.Edition),
	}
}

// Write operations, used to seed the store

// PutTag adds a tag, replacing any tag with the same (id, type).
func (r *Repository) PutTag(tag contentapi.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tags {
		if r.tags[i].TagID == tag.TagID && r.tags[i].TagType == tag.TagType {
			r.tags[i] = tag
			return
		}
	}
	r.tags = append(r.tags, tag)
}

// PutItem adds or replaces a content item. A nil ID is assigned.
func (r *Repository) PutItem(item contentapi.ContentItem) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if old, ok := r.items[item.ID]; ok {
		delete(r.itemsBySlug, old.Slug)
	}
	// Create a copy to avoid external modifications
	itemCopy := item
	itemCopy.TagIDs = append([]string(nil), item.TagIDs...)
	r.items[item.ID] = &itemCopy
	r.itemsBySlug[item.Slug] = item.ID
	return item.ID
}

// PutEdition appends an edition to the item identified by PanopticonID.
func (r *Repository) PutEdition(edition contentapi.Edition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if edition.ID == uuid.Nil {
		edition.ID = uuid.New()
	}
	r.editions[edition.PanopticonID] = append(r.editions[edition.PanopticonID], edition)
}

// PutCuratedList adds a curated list.
func (r *Repository) PutCuratedList(list contentapi.CuratedList) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	r.curatedLists = append(r.curatedLists, list)
}

// Tag operations

func (r *Repository) ListTagTypes(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var types []string
	for _, t := range r.tags {
		if _, ok := seen[t.TagType]; !ok {
			seen[t.TagType] = struct{}{}
			types = append(types, t.TagType)
		}
	}
	return types, nil
}

func (r *Repository) ListTags(ctx context.Context, filter contentapi.TagFilter) ([]contentapi.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []contentapi.Tag
	for _, t := range r.tags {
		if filter.TagType != "" && t.TagType != filter.TagType {
			continue
		}
		if filter.ParentID != "" && t.ParentID != filter.ParentID {
			continue
		}
		if filter.RootOnly && t.HasParent() {
			continue
		}
		result = append(result, t)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TagType != result[j].TagType {
			return result[i].TagType < result[j].TagType
		}
		return result[i].TagID < result[j].TagID
	})
	return result, nil
}

func (r *Repository) TagsByID(ctx context.Context, tagID string) ([]contentapi.Tag, error) {
	return r.TagsByIDs(ctx, []string{tagID})
}

func (r *Repository) GetTag(ctx context.Context, tagID, tagType string) (*contentapi.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tags {
		if t.TagID == tagID && t.TagType == tagType {
			tagCopy := t
			return &tagCopy, nil
		}
	}
	return nil, contentapi.ErrTagNotFound
}

func (r *Repository) TagsByIDs(ctx context.Context, tagIDs []string) ([]contentapi.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		want[id] = struct{}{}
	}
	var result []contentapi.Tag
	for _, t := range r.tags {
		if _, ok := want[t.TagID]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

// Content item operations

func (r *Repository) FindItems(ctx context.Context, filter contentapi.ItemFilter) ([]contentapi.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []contentapi.ContentItem
	for _, item := range r.items {
		if filter.Matches(item) {
			result = append(result, *item)
		}
	}
	// Map iteration order is random; callers get a stable base order
	sort.Slice(result, func(i, j int) bool {
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, slug, role string) (*contentapi.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.itemsBySlug[slug]
	if !ok {
		return nil, contentapi.ErrItemNotFound
	}
	item := r.items[id]
	if role != "" && !item.HasTag(role) {
		return nil, contentapi.ErrItemNotFound
	}
	// Return a copy to prevent external modifications
	itemCopy := *item
	return &itemCopy, nil
}

// Edition operations

func (r *Repository) ListEditions(ctx context.Context, itemID uuid.UUID) ([]contentapi.Edition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	editions := append([]contentapi.Edition(nil), r.editions[itemID]...)
	sort.SliceStable(editions, func(i, j int) bool {
		return editions[i].VersionNumber < editions[j].VersionNumber
	})
	return editions, nil
}

func (r *Repository) PublishedEditions(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]contentapi.Edition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uuid.UUID]contentapi.Edition)
	for _, id := range itemIDs {
		for _, e := range r.editions[id] {
			if !e.IsPublished() {
				continue
			}
			if cur, ok := result[id]; !ok || e.VersionNumber >= cur.VersionNumber {
				result[id] = e
			}
		}
	}
	return result, nil
}

// Curated list operations

func (r *Repository) FindCuratedList(ctx context.Context, tagIDs []string) (*contentapi.CuratedList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.curatedLists {
		if r.curatedLists[i].MatchesTags(tagIDs) {
			listCopy := r.curatedLists[i]
			return &listCopy, nil
		}
	}
	return nil, nil
}
