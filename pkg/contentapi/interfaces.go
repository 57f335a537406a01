package contentapi

import (
	"context"

	"github.com/google/uuid"
)

// Store is the content store query capability. Implementations must be safe
// for concurrent use; the service never writes through it.
type Store interface {
	// Tag operations
	ListTagTypes(ctx context.Context) ([]string, error)
	ListTags(ctx context.Context, filter TagFilter) ([]Tag, error)
	// TagsByID returns every tag with the id, whatever its type.
	TagsByID(ctx context.Context, tagID string) ([]Tag, error)
	// GetTag returns ErrTagNotFound when no tag has the (id, type) pair.
	GetTag(ctx context.Context, tagID, tagType string) (*Tag, error)
	TagsByIDs(ctx context.Context, tagIDs []string) ([]Tag, error)

	// Content item operations
	FindItems(ctx context.Context, filter ItemFilter) ([]ContentItem, error)
	// GetItemBySlug returns ErrItemNotFound when the slug is unknown or the
	// item lacks the role tag.
	GetItemBySlug(ctx context.Context, slug, role string) (*ContentItem, error)

	// Edition operations
	// ListEditions returns every edition of the item ordered by version.
	ListEditions(ctx context.Context, itemID uuid.UUID) ([]Edition, error)
	// PublishedEditions returns the latest published edition per item id.
	PublishedEditions(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]Edition, error)

	// FindCuratedList returns nil, nil when no list matches the tag set.
	FindCuratedList(ctx context.Context, tagIDs []string) (*CuratedList, error)
}

// TagFilter selects tags. Zero values mean "no constraint".
type TagFilter struct {
	TagType  string
	ParentID string
	// RootOnly restricts to tags without a parent.
	RootOnly bool
}

// ItemFilter selects content items. Zero values mean "no constraint".
type ItemFilter struct {
	State ItemState
	Kind  string
	// AnyTagIDs matches items carrying at least one of the ids.
	AnyTagIDs []string
	// AllTagIDs matches items carrying every id (used for role scoping).
	AllTagIDs        []string
	Author           string
	Node             string
	OrganizationName string
}

// Matches evaluates the filter in memory. Store implementations that cannot
// push a constraint down may use it as a post-filter.
func (f ItemFilter) Matches(item *ContentItem) bool {
	if f.State != "" && item.State != f.State {
		return false
	}
	if f.Kind != "" && item.Kind != f.Kind {
		return false
	}
	if len(f.AnyTagIDs) > 0 && !item.HasAnyTag(f.AnyTagIDs) {
		return false
	}
	for _, id := range f.AllTagIDs {
		if !item.HasTag(id) {
			return false
		}
	}
	if f.Author != "" && item.Author != f.Author {
		return false
	}
	if f.Node != "" && !contains(item.Nodes, f.Node) {
		return false
	}
	if f.OrganizationName != "" && !contains(item.OrganizationNames, f.OrganizationName) {
		return false
	}
	return true
}

// Access is the answer of an Authorizer.
type Access int

const (
	// AccessAnonymous means no authentication context was presented
	AccessAnonymous Access = iota
	// AccessDenied means the caller is authenticated but lacks the grant
	AccessDenied
	// AccessGranted means the caller may see unpublished editions
	AccessGranted
)

// Authorizer answers whether the caller may access unpublished content.
type Authorizer interface {
	UnpublishedAccess(ctx context.Context) Access
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context) Access

func (f AuthorizerFunc) UnpublishedAccess(ctx context.Context) Access {
	return f(ctx)
}

// Formatter converts raw body markup to an output format. It is used by
// presenters, never by the resolution core.
type Formatter interface {
	Format(markup string) string
}

// AssetLookup resolves an asset id to its public record.
type AssetLookup interface {
	Asset(ctx context.Context, assetID string) (*Asset, error)
}

// SearchClient queries the unified search backend. Implementations report
// timeouts and backend errors wrapped in ErrUnavailable.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
