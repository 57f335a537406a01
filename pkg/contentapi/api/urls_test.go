package api_test

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/api"
)

func TestURLs(t *testing.T) {
	urls := api.NewURLs("http://example.org/", "http://www.example.org/")
	crime := contentapi.Tag{TagID: "crime", TagType: "section"}
	police := contentapi.Tag{TagID: "police", TagType: "section"}
	batman := contentapi.Tag{TagID: "batman", TagType: "keyword"}

	assert.Equal(t, "http://example.org/alpha.json", urls.ItemURL("alpha"))
	assert.Equal(t, "http://example.org/business/tax.json", urls.APIURL("/business/tax"))
	assert.Equal(t, "http://www.example.org/business/tax", urls.WebURL("/business/tax"))
	assert.Equal(t, "http://example.org/tags/sections/crime.json", urls.TagURL(crime))
	assert.Equal(t, "http://example.org/tags/keywords.json", urls.TagTypeURL(contentapi.TagType{Singular: "keyword", Plural: "keywords"}))
	assert.Equal(t, "http://example.org/tags.json", urls.TagsURL(nil))
	assert.Equal(t, "http://example.org/artefacts.json?page=2", urls.ArtefactsURL(contentapi.Params{{Key: "page", Value: "2"}}))

	assert.Equal(t,
		"http://example.org/with_tag.json?section=crime%2Cpolice&keyword=batman&sort=date",
		urls.WithTagURL([]contentapi.Tag{crime, batman, police}, contentapi.Params{{Key: "sort", Value: "date"}}))
	assert.Equal(t,
		"http://example.org/with_tag.json?type=guide&role=odi",
		urls.WithTypeURL("guide", contentapi.Params{{Key: "role", Value: "odi"}}))
}

func TestRequestURLs(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		tls     bool
		proto   string
		prefix  string
		want    string
	}{
		{"configured base", "https://api.example.org", false, "", "", "https://api.example.org/alpha.json"},
		{"configured base with prefix", "https://api.example.org", false, "", "/content/", "https://api.example.org/content/alpha.json"},
		{"plain request", "", false, "", "", "http://example.com/alpha.json"},
		{"tls request", "", true, "", "", "https://example.com/alpha.json"},
		{"forwarded proto", "", false, "https", "api", "https://example.com/api/alpha.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/alpha.json", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.prefix != "" {
				req.Header.Set(api.APIPrefixHeader, tt.prefix)
			}

			urls := api.RequestURLs(req, tt.baseURL, "http://www.example.org")
			assert.Equal(t, tt.want, urls.ItemURL("alpha"))
		})
	}
}
