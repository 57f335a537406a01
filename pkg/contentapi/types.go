package contentapi

import (
	"time"

	"github.com/google/uuid"
)

// ItemState is the publication state of a ContentItem.
type ItemState string

const (
	ItemStateDraft    ItemState = "draft"
	ItemStateLive     ItemState = "live"
	ItemStateArchived ItemState = "archived"
)

// EditionState is the workflow state of an Edition. Only published and
// archived carry meaning for visibility; every other state is treated as a
// draft.
type EditionState string

const (
	EditionStateDraft     EditionState = "draft"
	EditionStateReady     EditionState = "ready"
	EditionStatePublished EditionState = "published"
	EditionStateArchived  EditionState = "archived"
)

// RoleTagType is the reserved tag type used for visibility scoping. It never
// appears in the TagCatalog.
const RoleTagType = "role"

// SectionTagType is the only tag type that forms a hierarchy.
const SectionTagType = "section"

// Tag is a typed classification value.
type Tag struct {
	TagID            string `json:"tag_id" yaml:"tag_id"`
	TagType          string `json:"tag_type" yaml:"tag_type"`
	Title            string `json:"title" yaml:"title"`
	Description      string `json:"description,omitempty" yaml:"description"`
	ShortDescription string `json:"short_description,omitempty" yaml:"short_description"`
	ParentID         string `json:"parent_id,omitempty" yaml:"parent_id"`
}

// HasParent reports whether the tag is a child section.
func (t Tag) HasParent() bool {
	return t.ParentID != ""
}

// TagType is a recognised tag category with its singular and plural forms.
type TagType struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// ContentItem is the canonical identity of a piece of publishable content
// (an "artefact"), independent of its versioned body.
type ContentItem struct {
	ID                uuid.UUID `json:"id" yaml:"id"`
	Slug              string    `json:"slug" yaml:"slug"`
	Name              string    `json:"name" yaml:"name"`
	Kind              string    `json:"kind" yaml:"kind"`
	OwningApp         string    `json:"owning_app" yaml:"owning_app"`
	State             ItemState `json:"state" yaml:"state"`
	TagIDs            []string  `json:"tag_ids" yaml:"tag_ids"`
	Description       string    `json:"description,omitempty" yaml:"description"`
	Author            string    `json:"author,omitempty" yaml:"author"`
	Nodes             []string  `json:"node,omitempty" yaml:"node"`
	OrganizationNames []string  `json:"organization_name,omitempty" yaml:"organization_name"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// HasTag reports whether the item carries the given tag id.
func (c *ContentItem) HasTag(tagID string) bool {
	for _, id := range c.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the item carries at least one of tagIDs.
func (c *ContentItem) HasAnyTag(tagIDs []string) bool {
	for _, id := range tagIDs {
		if c.HasTag(id) {
			return true
		}
	}
	return false
}

// Edition is a versioned body snapshot belonging to a ContentItem.
type Edition struct {
	ID            uuid.UUID    `json:"id" yaml:"id"`
	PanopticonID  uuid.UUID    `json:"panopticon_id" yaml:"panopticon_id"`
	Slug          string       `json:"slug" yaml:"slug"`
	Title         string       `json:"title" yaml:"title"`
	VersionNumber int          `json:"version_number" yaml:"version_number"`
	State         EditionState `json:"state" yaml:"state"`
	Payload       Payload      `json:"payload" yaml:"payload"`
	UpdatedAt     time.Time    `json:"updated_at" yaml:"updated_at"`
}

// IsPublished reports whether the edition is the public version.
func (e *Edition) IsPublished() bool {
	return e.State == EditionStatePublished
}

// IsArchived reports whether the edition has been retired.
func (e *Edition) IsArchived() bool {
	return e.State == EditionStateArchived
}

// CuratedList is an editorial ordering for content matching a tag set.
type CuratedList struct {
	ID      uuid.UUID   `json:"id" yaml:"id"`
	TagIDs  []string    `json:"tag_ids" yaml:"tag_ids"`
	ItemIDs []uuid.UUID `json:"artefact_ids" yaml:"artefact_ids"`
}

// MatchesTags reports whether the list was curated for exactly this set of
// tag ids. Order and duplicates are ignored.
func (l *CuratedList) MatchesTags(tagIDs []string) bool {
	want := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		want[id] = struct{}{}
	}
	have := make(map[string]struct{}, len(l.TagIDs))
	for _, id := range l.TagIDs {
		if _, ok := want[id]; !ok {
			return false
		}
		have[id] = struct{}{}
	}
	return len(have) == len(want)
}

// Scope is the per-request access partition. Role names the role tag the
// caller may see; it replaces any implicit per-request state.
type Scope struct {
	Role string
}

// Asset is a resolved asset-manager record.
type Asset struct {
	ID          string `json:"id"`
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type"`
}

// ItemView is the read-only projection handed to presenters: the item, the
// edition chosen for it (if edition-bearing), its tags and resolved assets.
// Nothing in it is written back to the store.
type ItemView struct {
	Item    ContentItem
	Edition *Edition
	Tags    []Tag
	Assets  map[string]Asset
}

// UpdatedAt returns the latest of the item and edition update times.
func (v *ItemView) UpdatedAt() time.Time {
	updated := v.Item.UpdatedAt
	if v.Edition != nil && v.Edition.UpdatedAt.After(updated) {
		updated = v.Edition.UpdatedAt
	}
	return updated
}

// ScopedTagIDs returns the item's tag ids without role tags.
func (v *ItemView) ScopedTagIDs() []string {
	roles := make(map[string]struct{})
	for _, t := range v.Tags {
		if t.TagType == RoleTagType {
			roles[t.TagID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(v.Item.TagIDs))
	for _, id := range v.Item.TagIDs {
		if _, ok := roles[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// SearchHit is one result from the unified search backend, optionally joined
// with the ContentItem it points at.
type SearchHit struct {
	ID          string                 `json:"_id,omitempty"`
	Title       string                 `json:"title"`
	Link        string                 `json:"link"`
	Description string                 `json:"description,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Extra       map[string]interface{} `json:"-"`
	View        *ItemView              `json:"-"`
}
