package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/tendant/content-api/pkg/contentapi"
	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML document accepted by LoadFixtures. Editions name
// their item by slug.
type Fixtures struct {
	Tags         []contentapi.Tag         `yaml:"tags"`
	Items        []contentapi.ContentItem `yaml:"items"`
	Editions     []EditionFixture         `yaml:"editions"`
	CuratedLists []CuratedListFixture     `yaml:"curated_lists"`
}

// EditionFixture is an edition attached to the item with ItemSlug.
type EditionFixture struct {
	ItemSlug           string `yaml:"item"`
	contentapi.Edition `yaml:",inline"`
}

// CuratedListFixture orders items by slug for a tag set.
type CuratedListFixture struct {
	TagIDs    []string `yaml:"tag_ids"`
	ItemSlugs []string `yaml:"items"`
}

// LoadFixturesFile seeds a new repository from a YAML file.
func LoadFixturesFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

// LoadFixtures seeds a new repository from a YAML document.
func LoadFixtures(r io.Reader) (*Repository, error) {
	var fx Fixtures
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	repo := New()
	for _, t := range fx.Tags {
		repo.PutTag(t)
	}
	ids := make(map[string]contentapi.ContentItem, len(fx.Items))
	for _, item := range fx.Items {
		item.ID = repo.PutItem(item)
		ids[item.Slug] = item
	}
	for _, e := range fx.Editions {
		item, ok := ids[e.ItemSlug]
		if !ok {
			return nil, fmt.Errorf("edition %q: unknown item %q", e.Title, e.ItemSlug)
		}
		e.Edition.PanopticonID = item.ID
		if e.Edition.Slug == "" {
			e.Edition.Slug = item.Slug
		}
		repo.PutEdition(e.Edition)
	}
	for _, l := range fx.CuratedLists {
		list := contentapi.CuratedList{TagIDs: l.TagIDs}
		for _, slug := range l.ItemSlugs {
			item, ok := ids[slug]
			if !ok {
				return nil, fmt.Errorf("curated list: unknown item %q", slug)
			}
			list.ItemIDs = append(list.ItemIDs, item.ID)
		}
		repo.PutCuratedList(list)
	}
	return repo, nil
}
