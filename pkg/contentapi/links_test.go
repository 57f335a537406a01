package contentapi_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-api/pkg/contentapi"
)

func pageURL(n int) string {
	return fmt.Sprintf("http://example.org/artefacts.json?page=%d", n)
}

func TestBuildLinks(t *testing.T) {
	tests := []struct {
		name string
		page contentapi.PageInfo
		want []string
	}{
		{"unpaginated", contentapi.PageInfo{PageNumber: 1, TotalPages: 3}, nil},
		{"single page", contentapi.PageInfo{PageNumber: 1, TotalPages: 1, Paginated: true}, nil},
		{"first page", contentapi.PageInfo{PageNumber: 1, TotalPages: 3, Paginated: true}, []string{"next"}},
		{"middle page", contentapi.PageInfo{PageNumber: 2, TotalPages: 3, Paginated: true}, []string{"next", "previous"}},
		{"last page", contentapi.PageInfo{PageNumber: 3, TotalPages: 3, Paginated: true}, []string{"previous"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := contentapi.BuildLinks(tt.page, pageURL)
			var rels []string
			for _, l := range links {
				rels = append(rels, l.Rel)
			}
			assert.Equal(t, tt.want, rels)
		})
	}
}

func TestBuildLinksTargets(t *testing.T) {
	links := contentapi.BuildLinks(contentapi.PageInfo{PageNumber: 2, TotalPages: 3, Paginated: true}, pageURL)

	assert.Equal(t, []contentapi.Link{
		{Rel: "next", Href: pageURL(3)},
		{Rel: "previous", Href: pageURL(1)},
	}, links)
}

func TestLinkHeaderRoundTrip(t *testing.T) {
	links := []contentapi.Link{
		{Rel: "next", Href: pageURL(3)},
		{Rel: "previous", Href: pageURL(1)},
	}

	header := contentapi.FormatLinkHeader(links)

	assert.Equal(t, `<http://example.org/artefacts.json?page=3>; rel="next", <http://example.org/artefacts.json?page=1>; rel="previous"`, header)
	assert.Equal(t, links, contentapi.ParseLinkHeader(header))
	assert.Empty(t, contentapi.FormatLinkHeader(nil))
}
