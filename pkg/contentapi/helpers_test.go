package contentapi_test

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/api"
	"github.com/tendant/content-api/pkg/contentapi/repo/memory"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testScope(role string) contentapi.RequestScope {
	return contentapi.RequestScope{
		Scope: contentapi.Scope{Role: role},
		URLs:  api.NewURLs("http://example.org", "http://www.example.org"),
	}
}

func section(id, parent string) contentapi.Tag {
	return contentapi.Tag{TagID: id, TagType: "section", Title: id, ParentID: parent}
}

func keyword(id string) contentapi.Tag {
	return contentapi.Tag{TagID: id, TagType: "keyword", Title: id}
}

// liveItem is a live, non edition-bearing item created daysAgo days before baseTime.
func liveItem(slug, name string, daysAgo int, tagIDs ...string) contentapi.ContentItem {
	created := baseTime.AddDate(0, 0, -daysAgo)
	return contentapi.ContentItem{
		Slug:      slug,
		Name:      name,
		Kind:      "answer",
		OwningApp: "panopticon",
		State:     contentapi.ItemStateLive,
		TagIDs:    tagIDs,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func publisherItem(slug, name string, daysAgo int, tagIDs ...string) contentapi.ContentItem {
	item := liveItem(slug, name, daysAgo, tagIDs...)
	item.OwningApp = "publisher"
	item.Kind = "guide"
	return item
}

func edition(itemID uuid.UUID, version int, state contentapi.EditionState) contentapi.Edition {
	return contentapi.Edition{
		PanopticonID:  itemID,
		Title:         fmt.Sprintf("Version %d", version),
		VersionNumber: version,
		State:         state,
		Payload:       contentapi.Payload{Kind: contentapi.KindGuide, Body: "body"},
		UpdatedAt:     baseTime,
	}
}

// newTestStore seeds a store with two sections, a keyword, a role and a
// handful of items.
//
//	crime (section)         police (section, child of crime)
//	batman (keyword)        odi (role)
func newTestStore() (*memory.Repository, map[string]uuid.UUID) {
	repo := memory.New()
	repo.PutTag(section("crime", ""))
	repo.PutTag(section("police", "crime"))
	repo.PutTag(keyword("batman"))
	repo.PutTag(contentapi.Tag{TagID: "odi", TagType: contentapi.RoleTagType, Title: "ODI"})

	ids := map[string]uuid.UUID{}
	for _, item := range []contentapi.ContentItem{
		liveItem("alpha", "Alpha", 3, "crime", "odi"),
		liveItem("bravo", "Bravo", 1, "crime"),
		liveItem("charlie", "Charlie", 2, "crime", "batman", "odi"),
		liveItem("delta", "Delta", 5, "police", "odi"),
	} {
		ids[item.Slug] = repo.PutItem(item)
	}

	draft := liveItem("draft-item", "Draft", 0, "crime")
	draft.State = contentapi.ItemStateDraft
	ids[draft.Slug] = repo.PutItem(draft)

	archived := liveItem("archived-item", "Archived", 0, "crime")
	archived.State = contentapi.ItemStateArchived
	ids[archived.Slug] = repo.PutItem(archived)

	return repo, ids
}
