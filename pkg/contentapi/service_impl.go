package contentapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
)

// Defaults for the Option values.
var (
	DefaultEditionBearingApps = []string{"publisher"}
	DefaultContentKinds       = []string{
		"answer", "article", "case_study", "course", "course_instance",
		"creative_work", "event", "guide", "job", "node", "organization",
		"person", "programme", "report", "simple_smart_answer", "timed_item",
		"transaction", "video",
	}
)

// service implements the Service interface
type service struct {
	store      Store
	authorizer Authorizer
	assets     AssetLookup
	search     SearchClient
	metrics    *Metrics

	tags      *TagResolver
	ordering  *CuratedOrderingEngine
	lifecycle *EditionLifecycleResolver

	kinds          []string
	editionBearing []string
	paginate       bool
	pageSize       int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the content store
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithAuthorizer sets the unpublished-access authorizer
func WithAuthorizer(a Authorizer) Option {
	return func(s *service) {
		s.authorizer = a
	}
}

// WithAssetLookup sets the asset lookup used when projecting items
func WithAssetLookup(a AssetLookup) Option {
	return func(s *service) {
		s.assets = a
	}
}

// WithSearchClient sets the unified search backend
func WithSearchClient(c SearchClient) Option {
	return func(s *service) {
		s.search = c
	}
}

// WithMetrics sets the instrumentation sink
func WithMetrics(m *Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithContentKinds sets the content kinds a legacy tag may redirect to
func WithContentKinds(kinds ...string) Option {
	return func(s *service) {
		s.kinds = kinds
	}
}

// WithEditionBearingApps sets the owning apps whose items have editions
func WithEditionBearingApps(apps ...string) Option {
	return func(s *service) {
		s.editionBearing = apps
	}
}

// WithPagination enables or disables pagination and sets the page size
func WithPagination(enabled bool, pageSize int) Option {
	return func(s *service) {
		s.paginate = enabled
		s.pageSize = pageSize
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		kinds:          DefaultContentKinds,
		editionBearing: DefaultEditionBearingApps,
		paginate:       true,
		pageSize:       DefaultPageSize,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}

	s.tags = NewTagResolver(s.store, s.kinds)
	s.ordering = NewCuratedOrderingEngine(s.store)
	s.lifecycle = NewEditionLifecycleResolver(s.store, s.editionBearing)
	return s, nil
}

// Collections

func (s *service) WithTag(ctx context.Context, q WithTagQuery) (*CollectionResult, error) {
	if q.LegacyTag != "" {
		return s.legacyRedirect(ctx, q)
	}

	mode, err := ParseSortMode(q.Sort)
	if err != nil {
		return nil, err
	}

	var (
		items       []ContentItem
		description string
		urlForPage  func(int) string
		modifiers   = linkModifiers(q)
	)

	if q.Type == "" {
		tags, err := s.tags.ResolveTypedTags(ctx, q.Values)
		if err != nil {
			return nil, err
		}
		tagIDs := make([]string, len(tags))
		for i, t := range tags {
			tagIDs[i] = t.TagID
		}
		description = fmt.Sprintf("All content with the '%s' %s", strings.Join(tagIDs, ","), tags[0].TagType)

		filter := ItemFilter{
			State:            ItemStateLive,
			AnyTagIDs:        tagIDs,
			AllTagIDs:        roleTags(q.Role),
			Author:           q.Filter.Author,
			Node:             q.Filter.Node,
			OrganizationName: q.Filter.OrganizationName,
		}
		items, err = s.liveItems(ctx, "with_tag", filter)
		if err != nil {
			return nil, err
		}
		err = s.metrics.Time("with_tag.order", func() error {
			var err error
			items, err = s.ordering.Order(ctx, items, tagIDs, mode)
			return err
		})
		if err != nil {
			return nil, err
		}
		urlForPage = func(n int) string {
			return q.URLs.WithTagURL(tags, withPage(modifiers, n))
		}
	} else {
		kind := inflection.Singular(q.Type)
		description = fmt.Sprintf("All content with the %s type", kind)

		filter := ItemFilter{
			State:     ItemStateLive,
			Kind:      kind,
			AllTagIDs: roleTags(q.Role),
		}
		items, err = s.liveItems(ctx, "with_type", filter)
		if err != nil {
			return nil, err
		}
		items = SortItems(items, mode, nil)
		urlForPage = func(n int) string {
			return q.URLs.WithTypeURL(kind, withPage(modifiers, n))
		}
	}

	views, err := s.projectAll(ctx, items)
	if err != nil {
		return nil, err
	}

	page := SinglePage(views)
	if q.Page != "" && s.paginate {
		number, err := ParsePage(q.Page)
		if err != nil {
			return nil, err
		}
		page, err = Paginate(views, number, s.pageSize)
		if err != nil {
			return nil, err
		}
	}

	return &CollectionResult{
		Description: description,
		Page:        page,
		Links:       BuildLinks(page.Info(), urlForPage),
	}, nil
}

func (s *service) legacyRedirect(ctx context.Context, q WithTagQuery) (*CollectionResult, error) {
	res, err := s.tags.ResolveLegacyTag(ctx, q.LegacyTag, q.Values)
	if err != nil {
		return nil, err
	}
	var location string
	switch res.Outcome {
	case RedirectToTypedTag:
		location = q.URLs.WithTagURL(res.Tags, res.Modifiers)
	case RedirectToType:
		location = q.URLs.WithTypeURL(res.Kind, res.Modifiers)
	}
	return &CollectionResult{Redirect: &Redirect{Location: location}}, nil
}

// linkModifiers keeps the modifiers that must survive onto page links.
func linkModifiers(q WithTagQuery) Params {
	var out Params
	for _, p := range ModifiersFrom(q.Values) {
		if p.Key != "page" {
			out = append(out, p)
		}
	}
	return out
}

func withPage(params Params, page int) Params {
	out := make(Params, 0, len(params)+1)
	out = append(out, params...)
	return append(out, Param{Key: "page", Value: strconv.Itoa(page)})
}

func roleTags(role string) []string {
	if role == "" {
		return nil
	}
	return []string{role}
}

// liveItems loads the items matching filter. Edition-bearing items without
// a published edition are dropped later, by projectAll.
func (s *service) liveItems(ctx context.Context, step string, filter ItemFilter) ([]ContentItem, error) {
	var items []ContentItem
	err := s.metrics.Time(step+".fetch", func() error {
		var err error
		items, err = s.store.FindItems(ctx, filter)
		return err
	})
	return items, err
}

func (s *service) Artefacts(ctx context.Context, q ArtefactsQuery) (*CollectionResult, error) {
	filter := ItemFilter{
		State:            ItemStateLive,
		AllTagIDs:        roleTags(q.Role),
		Author:           q.Filter.Author,
		Node:             q.Filter.Node,
		OrganizationName: q.Filter.OrganizationName,
	}
	items, err := s.liveItems(ctx, "artefacts", filter)
	if err != nil {
		return nil, err
	}
	items = SortItems(items, SortAlphabetical, nil)

	views := make([]ItemView, len(items))
	for i := range items {
		views[i] = ItemView{Item: items[i]}
	}

	page := SinglePage(views)
	if s.paginate {
		number, err := ParsePage(q.Page)
		if err != nil {
			return nil, err
		}
		page, err = Paginate(views, number, s.pageSize)
		if err != nil {
			return nil, err
		}
	}
	params := q.Filter.Params()
	return &CollectionResult{
		Page: page,
		Links: BuildLinks(page.Info(), func(n int) string {
			return q.URLs.ArtefactsURL(withPage(params, n))
		}),
	}, nil
}

// Single items

func (s *service) Item(ctx context.Context, q ItemQuery) (*ItemView, error) {
	if q.Edition != nil || q.EditionParam != "" {
		if err := s.authorize(ctx); err != nil {
			return nil, err
		}
	}
	if q.Edition == nil && q.EditionParam != "" {
		version, err := strconv.Atoi(q.EditionParam)
		if err != nil {
			return nil, notFound("parse edition", q.EditionParam)
		}
		q.Edition = &version
	}

	var item *ContentItem
	err := s.metrics.Time("artefact.fetch", func() error {
		var err error
		item, err = s.store.GetItemBySlug(ctx, q.Slug, q.Role)
		return err
	})
	if errors.Is(err, ErrItemNotFound) {
		return nil, notFound("get item", q.Slug)
	}
	if err != nil {
		return nil, err
	}

	if q.Edition == nil {
		if err := ResolveItemVisibility(item).Err("item visibility", q.Slug); err != nil {
			return nil, err
		}
	}

	view := &ItemView{Item: *item}
	if s.lifecycle.IsEditionBearing(item) {
		var res Resolution
		err := s.metrics.Time("artefact.edition", func() error {
			var err error
			res, err = s.lifecycle.Resolve(ctx, item, q.Edition)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := res.Outcome.Err("resolve edition", q.Slug); err != nil {
			return nil, err
		}
		view.Edition = res.Edition
	}

	if err := s.project(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) authorize(ctx context.Context) error {
	access := AccessAnonymous
	if s.authorizer != nil {
		access = s.authorizer.UnpublishedAccess(ctx)
	}
	switch access {
	case AccessGranted:
		return nil
	case AccessDenied:
		return &ResolutionError{Op: "authorize edition", Err: ErrForbidden,
			Message: "You must be authorized to use the edition parameter"}
	default:
		return &ResolutionError{Op: "authorize edition", Err: ErrUnauthorised,
			Message: "Edition parameter requires authentication"}
	}
}

func (s *service) Latest(ctx context.Context, q LatestQuery) (*ItemView, error) {
	filter := ItemFilter{State: ItemStateLive, AllTagIDs: roleTags(q.Role)}
	switch {
	case q.Type != "":
		if !s.tags.IsKnownKind(q.Type) {
			return nil, notFound("latest of type", q.Type)
		}
		filter.Kind = inflection.Singular(q.Type)
	case q.Tag != "":
		tags, err := s.store.TagsByID(ctx, q.Tag)
		if err != nil {
			return nil, err
		}
		if len(tags) == 0 {
			return nil, notFound("latest with tag", q.Tag)
		}
		filter.AllTagIDs = append(filter.AllTagIDs, q.Tag)
	default:
		return nil, notFound("latest", "")
	}

	items, err := s.liveItems(ctx, "latest", filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("latest", q.Type+q.Tag)
	}
	newest := SortItems(items, SortDate, nil)[0]
	return s.Item(ctx, ItemQuery{RequestScope: q.RequestScope, Slug: newest.Slug})
}

// Tags

func (s *service) Tags(ctx context.Context, q TagsQuery) (*TagCollection, error) {
	filter := TagFilter{TagType: q.Type, ParentID: q.ParentID, RootOnly: q.RootOnly}
	if q.RootOnly {
		filter.ParentID = ""
	}
	var tags []Tag
	err := s.metrics.Time("tags.fetch", func() error {
		var err error
		tags, err = s.store.ListTags(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := SinglePage(tags)
	if s.paginate {
		number, err := ParsePage(q.Page)
		if err != nil {
			return nil, err
		}
		page, err = Paginate(tags, number, s.pageSize)
		if err != nil {
			return nil, err
		}
	}

	var params Params
	if q.Type != "" {
		params = append(params, Param{Key: "type", Value: q.Type})
	}
	if q.ParentID != "" {
		params = append(params, Param{Key: "parent_id", Value: q.ParentID})
	}
	if q.RootOnly {
		params = append(params, Param{Key: "root_sections", Value: "true"})
	}
	return &TagCollection{
		Description: "All tags",
		Page:        page,
		Links: BuildLinks(page.Info(), func(n int) string {
			return q.URLs.TagsURL(withPage(params, n))
		}),
	}, nil
}

func (s *service) TagsOfType(ctx context.Context, q TagsOfTypeQuery) (*TagCollection, error) {
	res, err := s.tags.ResolveTagPath(ctx, q.Word)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case TagPathRedirectPlural:
		return &TagCollection{Redirect: &Redirect{Location: q.URLs.TagTypeURL(res.Type)}}, nil
	case TagPathRedirectSection:
		return &TagCollection{Redirect: &Redirect{Location: q.URLs.TagURL(*res.Section)}}, nil
	}

	filter, err := s.tags.ResolveSectionHierarchy(ctx, res.Type, q.ParentID, q.RootOnly)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TagCollection{
		Description: fmt.Sprintf("All '%s' tags", res.Type.Singular),
		Page:        SinglePage(tags),
	}, nil
}

func (s *service) Tag(ctx context.Context, pluralType, tagID string) (*Tag, error) {
	catalog, err := s.tags.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	tagType, ok := catalog.FromPlural(pluralType)
	if !ok {
		return nil, notFound("tag type", pluralType)
	}
	tag, err := s.store.GetTag(ctx, tagID, tagType.Singular)
	if errors.Is(err, ErrTagNotFound) {
		return nil, notFound("get tag", tagType.Singular+"/"+tagID)
	}
	return tag, err
}

func (s *service) TagTypes(ctx context.Context) ([]TagType, error) {
	catalog, err := s.tags.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.KnownTypes(), nil
}

// Search

func (s *service) Search(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	if strings.TrimSpace(q.Q) == "" {
		return nil, &ResolutionError{Op: "search", Err: ErrUnprocessable,
			Message: "Non-empty querystring is required in the 'q' parameter"}
	}
	if s.search == nil {
		return nil, &ResolutionError{Op: "search", Subject: q.Q, Err: ErrUnavailable}
	}

	var hits []SearchHit
	err := s.metrics.Time("search.query", func() error {
		var err error
		hits, err = s.search.Search(ctx, q.Q)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range hits {
		if hits[i].ID == "" {
			continue
		}
		view, err := s.searchView(ctx, path.Base(hits[i].ID), q.Role)
		if err != nil {
			return nil, err
		}
		hits[i].View = view
	}
	return hits, nil
}

// searchView joins a search hit with its item. Hits for unknown slugs are
// returned without a view.
func (s *service) searchView(ctx context.Context, slug, role string) (*ItemView, error) {
	item, err := s.store.GetItemBySlug(ctx, slug, role)
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	views, err := s.projectAll(ctx, []ContentItem{*item})
	if err != nil || len(views) == 0 {
		return nil, err
	}
	return &views[0], nil
}

// Projection

// projectAll builds views for items, attaching published editions to
// edition-bearing items and dropping those that have none.
func (s *service) projectAll(ctx context.Context, items []ContentItem) ([]ItemView, error) {
	var ids []uuid.UUID
	for i := range items {
		if s.lifecycle.IsEditionBearing(&items[i]) {
			ids = append(ids, items[i].ID)
		}
	}
	published := map[uuid.UUID]Edition{}
	if len(ids) > 0 {
		err := s.metrics.Time("editions.published", func() error {
			var err error
			published, err = s.store.PublishedEditions(ctx, ids)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	tags, err := s.tagIndex(ctx, items)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for i := range items {
		view := ItemView{Item: items[i]}
		if s.lifecycle.IsEditionBearing(&items[i]) {
			e, ok := published[items[i].ID]
			if !ok {
				continue
			}
			view.Edition = &e
		}
		for _, id := range items[i].TagIDs {
			if t, ok := tags[id]; ok {
				view.Tags = append(view.Tags, t)
			}
		}
		view.Assets = s.resolveAssets(ctx, view.Edition)
		views = append(views, view)
	}
	return views, nil
}

func (s *service) project(ctx context.Context, view *ItemView) error {
	tags, err := s.tagIndex(ctx, []ContentItem{view.Item})
	if err != nil {
		return err
	}
	for _, id := range view.Item.TagIDs {
		if t, ok := tags[id]; ok {
			view.Tags = append(view.Tags, t)
		}
	}
	view.Assets = s.resolveAssets(ctx, view.Edition)
	return nil
}

func (s *service) tagIndex(ctx context.Context, items []ContentItem) (map[string]Tag, error) {
	seen := make(map[string]struct{})
	var ids []string
	for i := range items {
		for _, id := range items[i].TagIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	index := make(map[string]Tag, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	tags, err := s.store.TagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if _, dup := index[t.TagID]; !dup {
			index[t.TagID] = t
		}
	}
	return index, nil
}

// resolveAssets looks up the assets the edition's kind exposes. Lookup
// failures are logged and the asset is left out.
func (s *service) resolveAssets(ctx context.Context, edition *Edition) map[string]Asset {
	if s.assets == nil || edition == nil {
		return nil
	}
	var out map[string]Asset
	for _, field := range edition.Payload.Capabilities().AssetFields {
		id := edition.Payload.AssetIDs[field]
		if id == "" {
			continue
		}
		asset, err := s.assets.Asset(ctx, id)
		if err != nil {
			slog.Warn("Asset lookup failed", "asset_id", id, "field", field, "error", err)
			continue
		}
		if asset == nil {
			continue
		}
		if out == nil {
			out = make(map[string]Asset)
		}
		out[field] = *asset
	}
	return out
}
