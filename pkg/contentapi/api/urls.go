package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/tendant/content-api/pkg/contentapi"
)

// APIPrefixHeader lets a fronting proxy tell the API where it is mounted.
const APIPrefixHeader = "API-Prefix"

// URLs builds public API and website URLs for one request. It implements
// contentapi.URLBuilder.
type URLs struct {
	base        string
	websiteRoot string
}

// NewURLs creates a builder rooted at base (scheme, host and any prefix).
func NewURLs(base, websiteRoot string) *URLs {
	return &URLs{
		base:        strings.TrimRight(base, "/"),
		websiteRoot: strings.TrimRight(websiteRoot, "/"),
	}
}

// RequestURLs derives the API base from the configured base URL, or from the
// inbound request when none is configured. The API-Prefix header is appended
// in both cases.
func RequestURLs(r *http.Request, baseURL, websiteRoot string) *URLs {
	base := baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	if prefix := strings.Trim(r.Header.Get(APIPrefixHeader), "/"); prefix != "" {
		base = strings.TrimRight(base, "/") + "/" + prefix
	}
	return NewURLs(base, websiteRoot)
}

func (u *URLs) withQuery(path string, params contentapi.Params) string {
	if len(params) == 0 {
		return u.base + path
	}
	return u.base + path + "?" + params.Encode()
}

// ItemURL is the API URL of a content item.
func (u *URLs) ItemURL(slug string) string {
	return u.base + "/" + url.PathEscape(slug) + ".json"
}

// APIURL is the API URL for a site-relative path.
func (u *URLs) APIURL(path string) string {
	return u.base + "/" + strings.TrimLeft(path, "/") + ".json"
}

// WebURL is the public website URL for a site-relative path.
func (u *URLs) WebURL(path string) string {
	return u.websiteRoot + "/" + strings.TrimLeft(path, "/")
}

// WithTagURL groups tag ids by type, in first-seen order, ahead of params.
func (u *URLs) WithTagURL(tags []contentapi.Tag, params contentapi.Params) string {
	var (
		order []string
		ids   = make(map[string][]string)
	)
	for _, t := range tags {
		if _, ok := ids[t.TagType]; !ok {
			order = append(order, t.TagType)
		}
		ids[t.TagType] = append(ids[t.TagType], t.TagID)
	}
	query := make(contentapi.Params, 0, len(order)+len(params))
	for _, tagType := range order {
		query = append(query, contentapi.Param{Key: tagType, Value: strings.Join(ids[tagType], ",")})
	}
	return u.withQuery("/with_tag.json", append(query, params...))
}

func (u *URLs) WithTypeURL(kind string, params contentapi.Params) string {
	query := append(contentapi.Params{{Key: "type", Value: kind}}, params...)
	return u.withQuery("/with_tag.json", query)
}

func (u *URLs) TagsURL(params contentapi.Params) string {
	return u.withQuery("/tags.json", params)
}

func (u *URLs) TagTypeURL(tagType contentapi.TagType) string {
	return u.base + "/tags/" + url.PathEscape(tagType.Plural) + ".json"
}

func (u *URLs) TagURL(tag contentapi.Tag) string {
	return u.base + "/tags/" + url.PathEscape(inflection.Plural(tag.TagType)) + "/" + url.PathEscape(tag.TagID) + ".json"
}

func (u *URLs) ArtefactsURL(params contentapi.Params) string {
	return u.withQuery("/artefacts.json", params)
}
