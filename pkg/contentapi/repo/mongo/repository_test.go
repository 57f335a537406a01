package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-api/pkg/contentapi"
)

func TestArtefactDocumentToItem(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := artefactDocument{
		ID:        "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Slug:      "alpha",
		Name:      "Alpha",
		Kind:      "answer",
		OwningApp: "panopticon",
		State:     "live",
		TagIDs:    []string{"crime", "odi"},
		CreatedAt: created,
	}

	item, err := doc.toItem()
	require.NoError(t, err)
	assert.Equal(t, doc.ID, item.ID.String())
	assert.Equal(t, contentapi.ItemStateLive, item.State)
	assert.Equal(t, []string{"crime", "odi"}, item.TagIDs)
	assert.Equal(t, created, item.CreatedAt)

	doc.ID = "not-a-uuid"
	_, err = doc.toItem()
	assert.Error(t, err)
}

func TestEditionDocumentToEdition(t *testing.T) {
	doc := editionDocument{
		ID:            "6ba7b811-9dad-11d1-80b4-00c04fd430c8",
		PanopticonID:  "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Slug:          "guide",
		Title:         "Guide",
		VersionNumber: 3,
		State:         "published",
		Payload:       contentapi.Payload{Kind: contentapi.KindGuide, Body: "body"},
	}

	edition, err := doc.toEdition()
	require.NoError(t, err)
	assert.True(t, edition.IsPublished())
	assert.Equal(t, 3, edition.VersionNumber)
	assert.Equal(t, doc.PanopticonID, edition.PanopticonID.String())
	assert.Equal(t, "body", edition.Payload.Body)

	doc.PanopticonID = ""
	_, err = doc.toEdition()
	assert.Error(t, err)
}

func TestHandleMongoError(t *testing.T) {
	err := handleMongoError("find artefacts", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, contentapi.ErrUnavailable))

	err = handleMongoError("find artefacts", errors.New("bad query"))
	assert.False(t, errors.Is(err, contentapi.ErrUnavailable))
	assert.Contains(t, err.Error(), "find artefacts")
}
