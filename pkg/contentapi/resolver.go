package contentapi

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/jinzhu/inflection"
)

// ModifierParams are the query parameters carried verbatim, in this order,
// when a legacy tag request is redirected.
var ModifierParams = []string{"sort", "author", "node", "organization_name", "role", "whole_body", "page"}

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// ModifiersFrom extracts the modifier parameters present in values.
func ModifiersFrom(values url.Values) Params {
	var out Params
	for _, key := range ModifierParams {
		if values.Has(key) {
			out = append(out, Param{Key: key, Value: values.Get(key)})
		}
	}
	return out
}

// Encode renders the parameters as a query string, keeping their order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

// LegacyOutcome is the decision taken for an untyped ?tag= request.
type LegacyOutcome int

const (
	// RedirectToTypedTag means exactly one tag type owns the id
	RedirectToTypedTag LegacyOutcome = iota + 1
	// RedirectToType means the value names a content kind
	RedirectToType
)

// LegacyResolution describes where a legacy tag request should go.
type LegacyResolution struct {
	Outcome   LegacyOutcome
	Tags      []Tag
	Kind      string
	Modifiers Params
}

// TagPathOutcome is the decision taken for /tags/{word}.json.
type TagPathOutcome int

const (
	// TagPathType means word is a plural tag type
	TagPathType TagPathOutcome = iota + 1
	// TagPathRedirectPlural means word is a singular tag type
	TagPathRedirectPlural
	// TagPathRedirectSection means word is the id of a section tag
	TagPathRedirectSection
)

// TagPathResolution is the answer for /tags/{word}.json.
type TagPathResolution struct {
	Outcome TagPathOutcome
	Type    TagType
	Section *Tag
}

// SortMode orders tagged collections.
type SortMode string

const (
	SortCurated      SortMode = "curated"
	SortAlphabetical SortMode = "alphabetical"
	SortDate         SortMode = "date"
)

// ParseSortMode validates a sort parameter. An empty value means
// alphabetical; anything unrecognised is not found.
func ParseSortMode(value string) (SortMode, error) {
	switch SortMode(value) {
	case "":
		return SortAlphabetical, nil
	case SortCurated, SortAlphabetical, SortDate:
		return SortMode(value), nil
	default:
		return "", notFound("parse sort", value)
	}
}

// TagResolver turns request parameters into concrete tags and decides
// disambiguation redirects.
type TagResolver struct {
	store   Store
	catalog *catalogCache
	kinds   map[string]struct{}
}

// NewTagResolver creates a resolver. kinds lists the content kinds a legacy
// tag value may redirect to.
func NewTagResolver(store Store, kinds []string) *TagResolver {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return &TagResolver{store: store, catalog: &catalogCache{}, kinds: set}
}

// Catalog returns the process-lifetime tag catalog, building it on first use.
func (r *TagResolver) Catalog(ctx context.Context) (*TagCatalog, error) {
	return r.catalog.get(ctx, r.store)
}

// IsKnownKind reports whether value, singularized, names a content kind.
func (r *TagResolver) IsKnownKind(value string) bool {
	_, ok := r.kinds[inflection.Singular(value)]
	return ok
}

// ResolveLegacyTag decides what an untyped ?tag=value request means.
func (r *TagResolver) ResolveLegacyTag(ctx context.Context, raw string, params url.Values) (LegacyResolution, error) {
	if raw == "" || strings.Contains(raw, ",") {
		return LegacyResolution{}, notFound("resolve legacy tag", raw)
	}

	tags, err := r.store.TagsByID(ctx, raw)
	if err != nil {
		return LegacyResolution{}, err
	}

	modifiers := ModifiersFrom(params)
	if owner, ok := uniqueOwner(tags); ok {
		return LegacyResolution{
			Outcome:   RedirectToTypedTag,
			Tags:      []Tag{owner},
			Modifiers: modifiers,
		}, nil
	}
	if r.IsKnownKind(raw) {
		return LegacyResolution{
			Outcome:   RedirectToType,
			Kind:      raw,
			Modifiers: modifiers,
		}, nil
	}
	return LegacyResolution{}, notFound("resolve legacy tag", raw)
}

// uniqueOwner returns the tag when every match shares one tag type.
func uniqueOwner(tags []Tag) (Tag, bool) {
	if len(tags) == 0 {
		return Tag{}, false
	}
	for _, t := range tags[1:] {
		if t.TagType != tags[0].TagType {
			return Tag{}, false
		}
	}
	return tags[0], true
}

// ResolveTypedTags resolves every ?{type}=id1,id2 parameter of a known tag
// type. Any unresolved token, an invalid sort, or no tokens at all is not
// found.
func (r *TagResolver) ResolveTypedTags(ctx context.Context, params url.Values) ([]Tag, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	var resolved []Tag
	for _, tagType := range catalog.KnownTypes() {
		// Trailing separators carry no tag.
		value := strings.TrimRight(params.Get(tagType.Singular), ",")
		if value == "" {
			continue
		}
		for _, token := range strings.Split(value, ",") {
			tag, err := r.store.GetTag(ctx, token, tagType.Singular)
			if errors.Is(err, ErrTagNotFound) {
				return nil, notFound("resolve tag", tagType.Singular+"="+token)
			}
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, *tag)
		}
	}

	if _, err := ParseSortMode(params.Get("sort")); err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, notFound("resolve tags", "")
	}
	return resolved, nil
}

// ResolveSectionHierarchy refines a tag listing with section parent or root
// constraints. Other tag types ignore both arguments.
func (r *TagResolver) ResolveSectionHierarchy(ctx context.Context, tagType TagType, parentID string, rootOnly bool) (TagFilter, error) {
	filter := TagFilter{TagType: tagType.Singular}
	if tagType.Singular != SectionTagType {
		return filter, nil
	}
	if parentID != "" && rootOnly {
		return TagFilter{}, notFound("resolve sections", "parent_id with root_sections")
	}
	if parentID != "" {
		if _, err := r.store.GetTag(ctx, parentID, SectionTagType); err != nil {
			if errors.Is(err, ErrTagNotFound) {
				return TagFilter{}, notFound("resolve parent section", parentID)
			}
			return TagFilter{}, err
		}
		filter.ParentID = parentID
	}
	filter.RootOnly = rootOnly
	return filter, nil
}

// ResolveTagPath decides what /tags/{word}.json refers to: a plural tag type,
// a singular type to redirect, or a legacy section id to redirect.
func (r *TagResolver) ResolveTagPath(ctx context.Context, word string) (TagPathResolution, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return TagPathResolution{}, err
	}
	if t, ok := catalog.FromPlural(word); ok {
		return TagPathResolution{Outcome: TagPathType, Type: t}, nil
	}
	if t, ok := catalog.FromSingular(word); ok {
		return TagPathResolution{Outcome: TagPathRedirectPlural, Type: t}, nil
	}
	section, err := r.store.GetTag(ctx, word, SectionTagType)
	if err == nil {
		return TagPathResolution{Outcome: TagPathRedirectSection, Section: section}, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return TagPathResolution{}, err
	}
	return TagPathResolution{}, notFound("resolve tag path", word)
}
