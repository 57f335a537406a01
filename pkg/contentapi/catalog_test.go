package contentapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-api/pkg/contentapi"
)

func TestNewTagCatalog(t *testing.T) {
	catalog := contentapi.NewTagCatalog([]string{"sections", "keyword", "section", "role", "", "keywords"})

	assert.Equal(t, []contentapi.TagType{
		{Singular: "keyword", Plural: "keywords"},
		{Singular: "section", Plural: "sections"},
	}, catalog.KnownTypes())
}

func TestTagCatalogLookups(t *testing.T) {
	catalog := contentapi.NewTagCatalog([]string{"section", "keyword"})

	tagType, ok := catalog.FromPlural("sections")
	assert.True(t, ok)
	assert.Equal(t, "section", tagType.Singular)

	_, ok = catalog.FromPlural("section")
	assert.False(t, ok)

	tagType, ok = catalog.FromSingular("keyword")
	assert.True(t, ok)
	assert.Equal(t, "keywords", tagType.Plural)

	_, ok = catalog.FromSingular("roles")
	assert.False(t, ok)
}

func TestKnownTypesReturnsCopy(t *testing.T) {
	catalog := contentapi.NewTagCatalog([]string{"section"})

	types := catalog.KnownTypes()
	types[0].Singular = "mutated"

	assert.Equal(t, "section", catalog.KnownTypes()[0].Singular)
}
