package contentapi_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-api/pkg/contentapi"
)

func editions(states ...contentapi.EditionState) []contentapi.Edition {
	id := uuid.New()
	out := make([]contentapi.Edition, len(states))
	for i, s := range states {
		out[i] = edition(id, i+1, s)
	}
	return out
}

func TestResolveDefault(t *testing.T) {
	const (
		draft     = contentapi.EditionStateDraft
		ready     = contentapi.EditionStateReady
		published = contentapi.EditionStatePublished
		archived  = contentapi.EditionStateArchived
	)

	tests := []struct {
		name        string
		editions    []contentapi.Edition
		wantState   contentapi.LifecycleState
		wantOutcome contentapi.Outcome
		wantVersion int
	}{
		{"no editions", nil, contentapi.NoEdition, contentapi.OutcomeNotFound, 0},
		{"draft only", editions(draft), contentapi.DraftOnly, contentapi.OutcomeNotFound, 1},
		{"ready counts as draft", editions(ready, draft), contentapi.DraftOnly, contentapi.OutcomeNotFound, 1},
		{"archived only", editions(archived), contentapi.ArchivedOnly, contentapi.OutcomeGone, 1},
		{"archived then draft", editions(archived, draft), contentapi.ArchivedOnly, contentapi.OutcomeGone, 1},
		{"published", editions(published), contentapi.Published, contentapi.OutcomeOK, 1},
		{"published then draft", editions(published, draft), contentapi.Published, contentapi.OutcomeOK, 1},
		{"latest published wins", editions(archived, published, published, draft), contentapi.Published, contentapi.OutcomeOK, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := contentapi.ResolveDefault(tt.editions)
			assert.Equal(t, tt.wantState, res.State)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			if tt.wantVersion == 0 {
				assert.Nil(t, res.Edition)
				return
			}
			require.NotNil(t, res.Edition)
			assert.Equal(t, tt.wantVersion, res.Edition.VersionNumber)
		})
	}
}

func TestResolveVersion(t *testing.T) {
	eds := editions(contentapi.EditionStatePublished, contentapi.EditionStateDraft)

	res := contentapi.ResolveVersion(eds, 2)
	assert.Equal(t, contentapi.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Edition)
	assert.Equal(t, contentapi.EditionStateDraft, res.Edition.State)
	assert.Equal(t, contentapi.Published, res.State)

	res = contentapi.ResolveVersion(eds, 3)
	assert.Equal(t, contentapi.OutcomeNotFound, res.Outcome)
	assert.Nil(t, res.Edition)
}

func TestResolveItemVisibility(t *testing.T) {
	assert.Equal(t, contentapi.OutcomeOK, contentapi.ResolveItemVisibility(&contentapi.ContentItem{State: contentapi.ItemStateLive}))
	assert.Equal(t, contentapi.OutcomeGone, contentapi.ResolveItemVisibility(&contentapi.ContentItem{State: contentapi.ItemStateArchived}))
	assert.Equal(t, contentapi.OutcomeNotFound, contentapi.ResolveItemVisibility(&contentapi.ContentItem{State: contentapi.ItemStateDraft}))
}

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, contentapi.OutcomeOK.Err("op", "x"))
	assert.ErrorIs(t, contentapi.OutcomeNotFound.Err("op", "x"), contentapi.ErrNotFound)
	assert.ErrorIs(t, contentapi.OutcomeGone.Err("op", "x"), contentapi.ErrGone)
}

func TestEditionLifecycleResolver(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	item := publisherItem("guide", "Guide", 0)
	item.ID = store.PutItem(item)
	// Inserted out of order; the store hands them back by version
	store.PutEdition(edition(item.ID, 2, contentapi.EditionStateDraft))
	store.PutEdition(edition(item.ID, 1, contentapi.EditionStatePublished))

	resolver := contentapi.NewEditionLifecycleResolver(store, []string{"publisher"})
	assert.True(t, resolver.IsEditionBearing(&item))
	assert.False(t, resolver.IsEditionBearing(&contentapi.ContentItem{OwningApp: "panopticon"}))

	res, err := resolver.Resolve(ctx, &item, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Edition.VersionNumber)

	version := 2
	res, err = resolver.Resolve(ctx, &item, &version)
	require.NoError(t, err)
	assert.Equal(t, contentapi.EditionStateDraft, res.Edition.State)
}
