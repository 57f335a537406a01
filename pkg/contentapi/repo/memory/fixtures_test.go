package memory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/repo/memory"
)

const fixtures = `
tags:
  - tag_id: crime
    tag_type: section
    title: Crime
  - tag_id: odi
    tag_type: role
    title: ODI
items:
  - slug: batman
    name: Batman
    kind: guide
    owning_app: publisher
    state: live
    tag_ids: [crime, odi]
    created_at: 2024-03-01T12:00:00Z
  - slug: robin
    name: Robin
    kind: answer
    owning_app: panopticon
    state: live
    tag_ids: [crime]
editions:
  - item: batman
    title: Batman
    version_number: 1
    state: published
    payload:
      kind: guide
      parts:
        - slug: overview
          title: Overview
          body: "Gotham"
          order: 1
curated_lists:
  - tag_ids: [crime]
    items: [robin, batman]
`

func TestLoadFixtures(t *testing.T) {
	ctx := context.Background()
	repo, err := memory.LoadFixtures(strings.NewReader(fixtures))
	require.NoError(t, err)

	item, err := repo.GetItemBySlug(ctx, "batman", "odi")
	require.NoError(t, err)
	assert.Equal(t, 2024, item.CreatedAt.Year())

	editions, err := repo.ListEditions(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, editions, 1)
	assert.Equal(t, "batman", editions[0].Slug)
	assert.Equal(t, contentapi.EditionStatePublished, editions[0].State)
	require.Len(t, editions[0].Payload.Parts, 1)
	assert.Equal(t, "Gotham", editions[0].Payload.Parts[0].Body)

	robin, err := repo.GetItemBySlug(ctx, "robin", "")
	require.NoError(t, err)
	list, err := repo.FindCuratedList(ctx, []string{"crime"})
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Equal(t, robin.ID, list.ItemIDs[0])
	assert.Equal(t, item.ID, list.ItemIDs[1])
}

func TestLoadFixturesUnknownItem(t *testing.T) {
	_, err := memory.LoadFixtures(strings.NewReader(`
editions:
  - item: missing
    title: Orphan
`))
	assert.ErrorContains(t, err, "unknown item")
}

func TestLoadFixturesEmpty(t *testing.T) {
	repo, err := memory.LoadFixtures(strings.NewReader(""))
	require.NoError(t, err)

	types, err := repo.ListTagTypes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, types)
}
