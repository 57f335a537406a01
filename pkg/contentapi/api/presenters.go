package api

import (
	"sort"
	"strings"
	"time"

	"github.com/tendant/content-api/pkg/contentapi"
)

// ResponseInfo is the _response_info block carried by every response.
type ResponseInfo struct {
	Status        string            `json:"status"`
	StatusMessage string            `json:"status_message,omitempty"`
	Links         []contentapi.Link `json:"links,omitempty"`
}

// ResultSetResponse is the envelope for collections.
type ResultSetResponse struct {
	ResponseInfo ResponseInfo  `json:"_response_info"`
	Description  string        `json:"description,omitempty"`
	Total        int           `json:"total"`
	StartIndex   int           `json:"start_index"`
	PageSize     int           `json:"page_size"`
	CurrentPage  int           `json:"current_page"`
	Pages        int           `json:"pages"`
	Results      []interface{} `json:"results"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	ResponseInfo ResponseInfo `json:"_response_info"`
}

func resultSet[T any](page contentapi.ResultPage[T], description string, links []contentapi.Link, present func(T) interface{}) ResultSetResponse {
	results := make([]interface{}, 0, len(page.Items))
	for _, item := range page.Items {
		results = append(results, present(item))
	}
	return ResultSetResponse{
		ResponseInfo: ResponseInfo{Status: "ok", Links: links},
		Description:  description,
		Total:        page.TotalCount,
		StartIndex:   page.StartIndex(),
		PageSize:     page.PageSize,
		CurrentPage:  page.PageNumber,
		Pages:        page.TotalPages(),
		Results:      results,
	}
}

// TagResponse presents a tag.
type TagResponse struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Details        TagDetails     `json:"details"`
	Parent         *TagParent     `json:"parent"`
	ContentWithTag ContentWithTag `json:"content_with_tag"`
	ResponseInfo   *ResponseInfo  `json:"_response_info,omitempty"`
}

type TagDetails struct {
	Description      string `json:"description"`
	ShortDescription string `json:"short_description,omitempty"`
	Type             string `json:"type"`
}

type TagParent struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type ContentWithTag struct {
	ID     string `json:"id"`
	WebURL string `json:"web_url"`
}

func presentTag(urls *URLs, tag contentapi.Tag) TagResponse {
	resp := TagResponse{
		ID:    urls.TagURL(tag),
		Slug:  tag.TagID,
		Title: tag.Title,
		Details: TagDetails{
			Description:      tag.Description,
			ShortDescription: tag.ShortDescription,
			Type:             tag.TagType,
		},
		ContentWithTag: ContentWithTag{
			ID:     urls.WithTagURL([]contentapi.Tag{tag}, nil),
			WebURL: urls.WebURL("browse/" + tag.TagID),
		},
	}
	if tag.HasParent() {
		parent := contentapi.Tag{TagID: tag.ParentID, TagType: tag.TagType}
		resp.Parent = &TagParent{ID: urls.TagURL(parent), Slug: tag.ParentID}
	}
	return resp
}

// TagTypeResponse presents a tag type.
type TagTypeResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

func presentTagType(urls *URLs, t contentapi.TagType) TagTypeResponse {
	return TagTypeResponse{ID: urls.TagTypeURL(t), Type: t.Singular, Singular: t.Singular, Plural: t.Plural}
}

// ItemResponse presents a content item and its edition.
type ItemResponse struct {
	ID           string                 `json:"id"`
	WebURL       string                 `json:"web_url"`
	Title        string                 `json:"title"`
	Format       string                 `json:"format"`
	UpdatedAt    string                 `json:"updated_at"`
	CreatedAt    string                 `json:"created_at"`
	TagIDs       []string               `json:"tag_ids"`
	Tags         []TagResponse          `json:"tags"`
	Details      map[string]interface{} `json:"details"`
	ResponseInfo *ResponseInfo          `json:"_response_info,omitempty"`
}

// MinimalItemResponse is used by /artefacts.json.
type MinimalItemResponse struct {
	ID     string `json:"id"`
	WebURL string `json:"web_url"`
	Title  string `json:"title"`
	Format string `json:"format"`
}

// Presenter renders item views with a body formatter.
type Presenter struct {
	urls      *URLs
	formatter contentapi.Formatter
	wholeBody bool
}

func (p Presenter) minimal(view contentapi.ItemView) interface{} {
	return MinimalItemResponse{
		ID:     p.urls.ItemURL(view.Item.Slug),
		WebURL: p.urls.WebURL(view.Item.Slug),
		Title:  view.Item.Name,
		Format: view.Item.Kind,
	}
}

func (p Presenter) item(view contentapi.ItemView) ItemResponse {
	title := view.Item.Name
	if view.Edition != nil && view.Edition.Title != "" {
		title = view.Edition.Title
	}
	tags := make([]TagResponse, 0, len(view.Tags))
	for _, t := range view.Tags {
		if t.TagType == contentapi.RoleTagType {
			continue
		}
		tags = append(tags, presentTag(p.urls, t))
	}
	return ItemResponse{
		ID:        p.urls.ItemURL(view.Item.Slug),
		WebURL:    p.urls.WebURL(view.Item.Slug),
		Title:     title,
		Format:    view.Item.Kind,
		UpdatedAt: view.UpdatedAt().UTC().Format(time.RFC3339),
		CreatedAt: view.Item.CreatedAt.UTC().Format(time.RFC3339),
		TagIDs:    view.ScopedTagIDs(),
		Tags:      tags,
		Details:   p.details(view),
	}
}

func (p Presenter) details(view contentapi.ItemView) map[string]interface{} {
	details := map[string]interface{}{
		"description": view.Item.Description,
	}
	if view.Edition == nil {
		return details
	}

	payload := view.Edition.Payload
	for name, value := range payload.Fields {
		details[name] = value
	}
	if payload.Body != "" {
		details["body"] = p.formatter.Format(payload.Body)
	}

	caps := payload.Capabilities()
	if caps.HasParts {
		parts := append([]contentapi.Part(nil), payload.Parts...)
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].Order < parts[j].Order })
		presented := make([]map[string]interface{}, 0, len(parts))
		for _, part := range parts {
			presented = append(presented, map[string]interface{}{
				"web_url": p.urls.WebURL(view.Item.Slug + "/" + part.Slug),
				"slug":    part.Slug,
				"title":   part.Title,
				"body":    p.formatter.Format(part.Body),
				"order":   part.Order,
			})
		}
		details["parts"] = presented
	}
	if caps.HasNodes {
		nodes := make([]map[string]interface{}, 0, len(payload.Nodes))
		for _, n := range payload.Nodes {
			options := make([]map[string]interface{}, 0, len(n.Options))
			for _, o := range n.Options {
				options = append(options, map[string]interface{}{
					"label":     o.Label,
					"slug":      o.Slug,
					"next_node": o.NextNode,
				})
			}
			nodes = append(nodes, map[string]interface{}{
				"kind":    n.Kind,
				"slug":    n.Slug,
				"title":   n.Title,
				"body":    p.formatter.Format(n.Body),
				"options": options,
			})
		}
		details["nodes"] = nodes
	}
	if caps.HasExpectations {
		details["expectations"] = payload.Expectations
	}
	if len(view.Assets) > 0 {
		assets := make(map[string]interface{}, len(view.Assets))
		for field, asset := range view.Assets {
			assets[field] = map[string]string{
				"web_url":      asset.FileURL,
				"content_type": asset.ContentType,
			}
		}
		details["assets"] = assets
	}
	if p.wholeBody {
		details["body"] = payload.Body
	}
	return details
}

// SearchResultResponse presents a search hit.
type SearchResultResponse struct {
	ID      *string                `json:"id"`
	WebURL  string                 `json:"web_url"`
	Title   string                 `json:"title"`
	Details map[string]interface{} `json:"details"`
}

func presentSearchHit(urls *URLs, hit contentapi.SearchHit) interface{} {
	resp := SearchResultResponse{
		Title:   hit.Title,
		Details: map[string]interface{}{"description": hit.Description},
	}
	if strings.HasPrefix(hit.Link, "http") {
		resp.WebURL = hit.Link
	} else {
		id := urls.APIURL(hit.Link)
		resp.ID = &id
		resp.WebURL = urls.WebURL(hit.Link)
	}
	if hit.View != nil {
		item := hit.View.Item
		resp.Details["slug"] = item.Slug
		resp.Details["tag_ids"] = item.TagIDs
		resp.Details["format"] = searchFormat(hit.View)
		resp.Details["created_at"] = item.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// searchFormat prefers a tag of the item's kind over the bare kind.
func searchFormat(view *contentapi.ItemView) string {
	for _, t := range view.Tags {
		if t.TagType == view.Item.Kind {
			return t.TagID
		}
	}
	return view.Item.Kind
}
