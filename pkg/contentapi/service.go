package contentapi

import (
	"context"
	"net/url"
)

// Service answers "what should be returned for this query".
type Service interface {
	// WithTag lists live content for a legacy tag, typed tags or a content
	// kind. A legacy tag yields a Redirect instead of items.
	WithTag(ctx context.Context, q WithTagQuery) (*CollectionResult, error)

	// Item returns a single content item with its visible edition.
	Item(ctx context.Context, q ItemQuery) (*ItemView, error)

	// Latest returns the newest live item of a kind or with a tag.
	Latest(ctx context.Context, q LatestQuery) (*ItemView, error)

	// Artefacts lists every live item visible in scope.
	Artefacts(ctx context.Context, q ArtefactsQuery) (*CollectionResult, error)

	// Tag browsing
	Tags(ctx context.Context, q TagsQuery) (*TagCollection, error)
	TagsOfType(ctx context.Context, q TagsOfTypeQuery) (*TagCollection, error)
	Tag(ctx context.Context, pluralType, tagID string) (*Tag, error)
	TagTypes(ctx context.Context) ([]TagType, error)

	// Search queries the unified search backend and joins each hit with
	// its content item.
	Search(ctx context.Context, q SearchQuery) ([]SearchHit, error)
}

// URLBuilder renders the public URLs the service needs for redirects and
// pagination links. Implementations are per request since the base URL can
// depend on the inbound host.
type URLBuilder interface {
	WithTagURL(tags []Tag, params Params) string
	WithTypeURL(kind string, params Params) string
	TagsURL(params Params) string
	TagTypeURL(tagType TagType) string
	TagURL(tag Tag) string
	ArtefactsURL(params Params) string
}

// RequestScope is the explicit per-request context threaded into every
// service call.
type RequestScope struct {
	Scope
	URLs URLBuilder
}

// AttributeFilter narrows collections by item attributes.
type AttributeFilter struct {
	Author           string
	Node             string
	OrganizationName string
}

// Params renders the non-empty filter values as query parameters.
func (f AttributeFilter) Params() Params {
	var p Params
	if f.Author != "" {
		p = append(p, Param{Key: "author", Value: f.Author})
	}
	if f.Node != "" {
		p = append(p, Param{Key: "node", Value: f.Node})
	}
	if f.OrganizationName != "" {
		p = append(p, Param{Key: "organization_name", Value: f.OrganizationName})
	}
	return p
}

// WithTagQuery is a parsed /with_tag.json request.
type WithTagQuery struct {
	RequestScope
	// LegacyTag is the untyped ?tag= value.
	LegacyTag string
	// Type is the ?type= content kind, singular or plural.
	Type   string
	Sort   string
	Filter AttributeFilter
	// Page is the raw page parameter, empty when no page was requested.
	// It is read only when the service paginates.
	Page string
	// Values is the raw query; typed tag parameters and redirect modifiers
	// are read from it.
	Values url.Values
}

// ItemQuery is a single-item request.
type ItemQuery struct {
	RequestScope
	Slug string
	// Edition is the explicit version requested, nil for the default view.
	Edition *int
	// EditionParam is the raw edition query value, used when Edition is nil.
	// It is parsed only after the caller passes the authorization gate.
	EditionParam string
}

// LatestQuery selects the newest item of a kind or with a tag.
type LatestQuery struct {
	RequestScope
	Type string
	Tag  string
}

// ArtefactsQuery lists every live item in scope.
type ArtefactsQuery struct {
	RequestScope
	Filter AttributeFilter
	// Page is the raw page parameter. It is read only when the service
	// paginates; empty means the first page.
	Page string
}

// TagsQuery lists tags across types.
type TagsQuery struct {
	RequestScope
	Type     string
	ParentID string
	RootOnly bool
	// Page is the raw page parameter, read only when the service paginates.
	Page string
}

// TagsOfTypeQuery lists the tags of one type addressed by path word.
type TagsOfTypeQuery struct {
	RequestScope
	Word     string
	ParentID string
	RootOnly bool
}

// SearchQuery is a free-text search.
type SearchQuery struct {
	RequestScope
	Q string
}

// Redirect tells the caller to go elsewhere.
type Redirect struct {
	Location string
}

// CollectionResult is a page of items with its navigation links, or a
// redirect.
type CollectionResult struct {
	Description string
	Page        ResultPage[ItemView]
	Links       []Link
	Redirect    *Redirect
}

// TagCollection is a page of tags with its navigation links, or a redirect.
type TagCollection struct {
	Description string
	Page        ResultPage[Tag]
	Links       []Link
	Redirect    *Redirect
}
