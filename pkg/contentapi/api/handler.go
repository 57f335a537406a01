package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/markup"
)

// Cache lifetimes.
const (
	DefaultCacheTime = 15 * time.Minute
	LongCacheTime    = time.Hour
)

// Config for the HTTP handler
type Config struct {
	// BaseURL is the public API root. Empty derives it from each request.
	BaseURL string
	// WebsiteRoot prefixes web_url values.
	WebsiteRoot string
	// DefaultRole scopes requests that carry no role parameter.
	DefaultRole string
	// Formatter renders body markup; HTML via goldmark when nil.
	Formatter contentapi.Formatter
	Metrics   *contentapi.Metrics
}

// Handler serves the read-only content API
type Handler struct {
	service contentapi.Service
	config  Config
}

// NewHandler creates a new content API handler
func NewHandler(service contentapi.Service, config Config) *Handler {
	if config.Formatter == nil {
		config.Formatter = markup.NewHTML()
	}
	return &Handler{service: service, config: config}
}

// Routes returns the routes for the content API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(CORSMiddleware([]string{"*"}, []string{"GET", "OPTIONS"}, nil))

	r.Get("/with_tag.json", h.WithTag)
	r.Get("/tags.json", h.ListTags)
	r.Get("/tag_types.json", h.ListTagTypes)
	r.Get("/tags/*", h.TagPath)
	r.Get("/artefacts.json", h.ListArtefacts)
	r.Get("/latest.json", h.Latest)
	r.Get("/search.json", h.Search)

	// Slugs may contain slashes
	r.Get("/*", h.GetItem)

	return r
}

func (h *Handler) scope(r *http.Request) contentapi.RequestScope {
	role := h.config.DefaultRole
	if q := r.URL.Query(); q.Has("role") {
		role = q.Get("role")
	}
	return contentapi.RequestScope{
		Scope: contentapi.Scope{Role: role},
		URLs:  h.urls(r),
	}
}

func (h *Handler) urls(r *http.Request) *URLs {
	return RequestURLs(r, h.config.BaseURL, h.config.WebsiteRoot)
}

func attributeFilter(q url.Values) contentapi.AttributeFilter {
	return contentapi.AttributeFilter{
		Author:           q.Get("author"),
		Node:             q.Get("node"),
		OrganizationName: q.Get("organization_name"),
	}
}

// WithTag lists content by tag or by content kind
func (h *Handler) WithTag(w http.ResponseWriter, r *http.Request) {
	const scope = "with_tag"
	expires(w, DefaultCacheTime)
	values := r.URL.Query()

	query := contentapi.WithTagQuery{
		RequestScope: h.scope(r),
		LegacyTag:    values.Get("tag"),
		Type:         values.Get("type"),
		Sort:         values.Get("sort"),
		Filter:       attributeFilter(values),
		Page:         values.Get("page"),
		Values:       values,
	}

	result, err := h.service.WithTag(r.Context(), query)
	if err != nil {
		h.writeError(w, r, scope, err)
		return
	}
	if result.Redirect != nil {
		http.Redirect(w, r, result.Redirect.Location, http.StatusFound)
		return
	}

	p := h.presenter(r)
	p.wholeBody = values.Get("whole_body") != ""
	h.writeResultSet(w, r, resultSet(result.Page, result.Description, result.Links, func(v contentapi.ItemView) interface{} {
		return p.item(v)
	}))
}

// ListTags lists tags across types
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	const scope = "tags"
	expires(w, DefaultCacheTime)
	values := r.URL.Query()

	result, err := h.service.Tags(r.Context(), contentapi.TagsQuery{
		RequestScope: h.scope(r),
		Type:         values.Get("type"),
		ParentID:     values.Get("parent_id"),
		RootOnly:     values.Has("root_sections"),
		Page:         values.Get("page"),
	})
	if err != nil {
		h.writeError(w, r, scope, err)
		return
	}
	h.writeTags(w, r, result)
}

// ListTagTypes lists the known tag types
func (h *Handler) ListTagTypes(w http.ResponseWriter, r *http.Request) {
	expires(w, LongCacheTime)

	types, err := h.service.TagTypes(r.Context())
	if err != nil {
		h.writeError(w, r, "tag_types", err)
		return
	}
	urls := h.urls(r)
	h.writeResultSet(w, r, resultSet(contentapi.SinglePage(types), "All tag types", nil, func(t contentapi.TagType) interface{} {
		return presentTagType(urls, t)
	}))
}

// TagPath serves /tags/{type_or_id}.json and /tags/{type}/{id}.json
func (h *Handler) TagPath(w http.ResponseWriter, r *http.Request) {
	const scope = "tag"
	expires(w, DefaultCacheTime)

	rest, ok := strings.CutSuffix(chi.URLParam(r, "*"), ".json")
	if !ok {
		h.writeError(w, r, scope, fmt.Errorf("tag path %q: %w", rest, contentapi.ErrNotFound))
		return
	}
	parts := strings.Split(rest, "/")
	for i := range parts {
		if unescaped, err := url.PathUnescape(parts[i]); err == nil {
			parts[i] = unescaped
		}
	}

	switch len(parts) {
	case 1:
		h.tagsOfType(w, r, parts[0])
	case 2:
		tag, err := h.service.Tag(r.Context(), parts[0], parts[1])
		if err != nil {
			h.writeError(w, r, scope, err)
			return
		}
		resp := presentTag(h.urls(r), *tag)
		resp.ResponseInfo = &ResponseInfo{Status: "ok"}
		render.JSON(w, r, resp)
	default:
		h.writeError(w, r, scope, fmt.Errorf("tag path %q: %w", rest, contentapi.ErrNotFound))
	}
}

func (h *Handler) tagsOfType(w http.ResponseWriter, r *http.Request, word string) {
	values := r.URL.Query()
	result, err := h.service.TagsOfType(r.Context(), contentapi.TagsOfTypeQuery{
		RequestScope: h.scope(r),
		Word:         word,
		ParentID:     values.Get("parent_id"),
		RootOnly:     values.Has("root_sections"),
	})
	if err != nil {
		h.writeError(w, r, "tag", err)
		return
	}
	h.writeTags(w, r, result)
}

func (h *Handler) writeTags(w http.ResponseWriter, r *http.Request, result *contentapi.TagCollection) {
	if result.Redirect != nil {
		http.Redirect(w, r, result.Redirect.Location, http.StatusFound)
		return
	}
	urls := h.urls(r)
	h.writeResultSet(w, r, resultSet(result.Page, result.Description, result.Links, func(t contentapi.Tag) interface{} {
		return presentTag(urls, t)
	}))
}

// ListArtefacts lists every live item in scope
func (h *Handler) ListArtefacts(w http.ResponseWriter, r *http.Request) {
	const scope = "artefacts"
	expires(w, DefaultCacheTime)
	values := r.URL.Query()

	result, err := h.service.Artefacts(r.Context(), contentapi.ArtefactsQuery{
		RequestScope: h.scope(r),
		Filter:       attributeFilter(values),
		Page:         values.Get("page"),
	})
	if err != nil {
		h.writeError(w, r, scope, err)
		return
	}
	p := h.presenter(r)
	h.writeResultSet(w, r, resultSet(result.Page, result.Description, result.Links, p.minimal))
}

// Latest returns the newest item of a type or with a tag
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	expires(w, DefaultCacheTime)
	values := r.URL.Query()

	view, err := h.service.Latest(r.Context(), contentapi.LatestQuery{
		RequestScope: h.scope(r),
		Type:         values.Get("type"),
		Tag:          values.Get("tag"),
	})
	if err != nil {
		h.writeError(w, r, "latest", err)
		return
	}
	h.writeItem(w, r, view)
}

// Search queries the unified search backend
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	hits, err := h.service.Search(r.Context(), contentapi.SearchQuery{
		RequestScope: h.scope(r),
		Q:            r.URL.Query().Get("q"),
	})
	if err != nil {
		h.writeError(w, r, "search", err)
		return
	}
	urls := h.urls(r)
	h.writeResultSet(w, r, resultSet(contentapi.SinglePage(hits), "", nil, func(hit contentapi.SearchHit) interface{} {
		return presentSearchHit(urls, hit)
	}))
}

// GetItem returns a single content item by slug
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	const scope = "artefact"
	values := r.URL.Query()

	rest, ok := strings.CutSuffix(chi.URLParam(r, "*"), ".json")
	if !ok || rest == "" {
		h.writeError(w, r, scope, fmt.Errorf("path %q: %w", r.URL.Path, contentapi.ErrNotFound))
		return
	}
	slug, err := url.PathUnescape(rest)
	if err != nil {
		slug = rest
	}

	query := contentapi.ItemQuery{RequestScope: h.scope(r), Slug: slug, EditionParam: values.Get("edition")}
	if values.Has("edition") {
		// Editions change often while being previewed
		expires(w, 0)
	} else {
		expires(w, DefaultCacheTime)
	}

	view, err := h.service.Item(r.Context(), query)
	if err != nil {
		h.writeError(w, r, scope, err)
		return
	}
	h.writeItem(w, r, view)
}

func (h *Handler) presenter(r *http.Request) Presenter {
	formatter := h.config.Formatter
	if r.URL.Query().Get("content_format") == "govspeak" {
		formatter = markup.Raw{}
	}
	return Presenter{urls: h.urls(r), formatter: formatter}
}

func (h *Handler) writeItem(w http.ResponseWriter, r *http.Request, view *contentapi.ItemView) {
	resp := h.presenter(r).item(*view)
	resp.ResponseInfo = &ResponseInfo{Status: "ok"}
	render.JSON(w, r, resp)
}

func (h *Handler) writeResultSet(w http.ResponseWriter, r *http.Request, resp ResultSetResponse) {
	if header := contentapi.FormatLinkHeader(resp.ResponseInfo.Links); header != "" {
		w.Header().Set("Link", header)
	}
	render.JSON(w, r, resp)
}

// writeError maps err onto the status code and _response_info envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, scope string, err error) {
	kind := contentapi.KindOf(err)
	status := kind.Status()
	if kind == contentapi.KindInternal {
		slog.Error("Request failed", "scope", scope, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("Request rejected", "scope", scope, "path", r.URL.Path, "status", status, "error", err)
	}
	if errors.Is(err, contentapi.ErrInvalidPage) {
		h.config.Metrics.RecordBadPage(scope)
	}
	h.config.Metrics.RecordError(scope, status)

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{ResponseInfo: ResponseInfo{
		Status:        kind.Keyword(),
		StatusMessage: contentapi.MessageOf(err),
	}})
}

func expires(w http.ResponseWriter, maxAge time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	w.Header().Set("Expires", time.Now().Add(maxAge).UTC().Format(http.TimeFormat))
}
