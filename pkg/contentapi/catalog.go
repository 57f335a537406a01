package contentapi

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/jinzhu/inflection"
)

// TagCatalog is the immutable set of tag types available for content
// classification.
type TagCatalog struct {
	types []TagType
}

// NewTagCatalog builds a catalog from tag type names as stored on tags. Names
// may be singular or plural; the reserved role type and duplicates are
// dropped and the result is sorted by singular form.
func NewTagCatalog(names []string) *TagCatalog {
	seen := make(map[string]struct{}, len(names))
	types := make([]TagType, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		singular := inflection.Singular(name)
		if singular == RoleTagType {
			continue
		}
		if _, ok := seen[singular]; ok {
			continue
		}
		seen[singular] = struct{}{}
		types = append(types, TagType{Singular: singular, Plural: inflection.Plural(singular)})
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Singular < types[j].Singular
	})
	return &TagCatalog{types: types}
}

// KnownTypes returns the catalog's tag types in a stable order.
func (c *TagCatalog) KnownTypes() []TagType {
	out := make([]TagType, len(c.types))
	copy(out, c.types)
	return out
}

// FromPlural finds the tag type whose plural form is word.
func (c *TagCatalog) FromPlural(word string) (TagType, bool) {
	for _, t := range c.types {
		if t.Plural == word {
			return t, true
		}
	}
	return TagType{}, false
}

// FromSingular finds the tag type whose singular form is word.
func (c *TagCatalog) FromSingular(word string) (TagType, bool) {
	for _, t := range c.types {
		if t.Singular == word {
			return t, true
		}
	}
	return TagType{}, false
}

// catalogCache builds the catalog at most once per successful load. Two
// concurrent first loads compute the same value; the first stored wins.
type catalogCache struct {
	catalog atomic.Pointer[TagCatalog]
}

func (c *catalogCache) get(ctx context.Context, store Store) (*TagCatalog, error) {
	if cat := c.catalog.Load(); cat != nil {
		return cat, nil
	}
	names, err := store.ListTagTypes(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog.CompareAndSwap(nil, NewTagCatalog(names))
	return c.catalog.Load(), nil
}
