package contentapi

import (
	"strings"
)

// Link relations emitted for paginated collections.
const (
	RelNext     = "next"
	RelPrevious = "previous"
)

// Link is one RFC-5988 link relation.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// BuildLinks returns the navigation links for a page. next is present iff
// there is a following page and previous iff there is a preceding one.
// Unpaginated results have no links.
func BuildLinks(page PageInfo, urlForPage func(pageNumber int) string) []Link {
	if !page.Paginated {
		return nil
	}
	var links []Link
	if page.PageNumber < page.TotalPages {
		links = append(links, Link{Rel: RelNext, Href: urlForPage(page.PageNumber + 1)})
	}
	if page.PageNumber > 1 {
		links = append(links, Link{Rel: RelPrevious, Href: urlForPage(page.PageNumber - 1)})
	}
	return links
}

// FormatLinkHeader renders links as an HTTP Link header value. It returns
// the empty string for no links.
func FormatLinkHeader(links []Link) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, "<"+l.Href+`>; rel="`+l.Rel+`"`)
	}
	return strings.Join(parts, ", ")
}

// ParseLinkHeader reads a Link header produced by FormatLinkHeader.
func ParseLinkHeader(header string) []Link {
	var links []Link
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		end := strings.Index(part, ">")
		if !strings.HasPrefix(part, "<") || end < 0 {
			continue
		}
		href := part[1:end]
		rest := part[end+1:]
		i := strings.Index(rest, `rel="`)
		if i < 0 {
			continue
		}
		rel := rest[i+len(`rel="`):]
		if j := strings.Index(rel, `"`); j >= 0 {
			rel = rel[:j]
		}
		links = append(links, Link{Rel: rel, Href: href})
	}
	return links
}
