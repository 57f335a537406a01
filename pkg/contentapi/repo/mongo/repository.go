package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/content-api/pkg/contentapi"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	TagsCollection         = "tags"
	ArtefactsCollection    = "artefacts"
	EditionsCollection     = "editions"
	CuratedListsCollection = "curated_lists"
)

// Repository implements contentapi.Store on a MongoDB database
type Repository struct {
	tags         *mongo.Collection
	artefacts    *mongo.Collection
	editions     *mongo.Collection
	curatedLists *mongo.Collection
}

// New creates a repository reading from db
func New(db *mongo.Database) *Repository {
	return &Repository{
		tags:         db.Collection(TagsCollection),
		artefacts:    db.Collection(ArtefactsCollection),
		editions:     db.Collection(EditionsCollection),
		curatedLists: db.Collection(CuratedListsCollection),
	}
}

// Connect dials uri and returns a repository over database.
func Connect(ctx context.Context, uri, database string) (*Repository, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client.Database(database)), client, nil
}

func handleMongoError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w", operation, contentapi.ErrUnavailable)
	}
	return fmt.Errorf("mongo error in %s: %w", operation, err)
}

// Documents

type tagDocument struct {
	TagID            string `bson:"tag_id"`
	TagType          string `bson:"tag_type"`
	Title            string `bson:"title"`
	Description      string `bson:"description,omitempty"`
	ShortDescription string `bson:"short_description,omitempty"`
	ParentID         string `bson:"parent_id,omitempty"`
}

func (d tagDocument) toTag() contentapi.Tag {
	return contentapi.Tag{
		TagID:            d.TagID,
		TagType:          d.TagType,
		Title:            d.Title,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		ParentID:         d.ParentID,
	}
}

type artefactDocument struct {
	ID                string    `bson:"_id"`
	Slug              string    `bson:"slug"`
	Name              string    `bson:"name"`
	Kind              string    `bson:"kind"`
	OwningApp         string    `bson:"owning_app"`
	State             string    `bson:"state"`
	TagIDs            []string  `bson:"tag_ids"`
	Description       string    `bson:"description,omitempty"`
	Author            string    `bson:"author,omitempty"`
	Nodes             []string  `bson:"node,omitempty"`
	OrganizationNames []string  `bson:"organization_name,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d artefactDocument) toItem() (contentapi.ContentItem, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return contentapi.ContentItem{}, fmt.Errorf("artefact %q: %w", d.Slug, err)
	}
	return contentapi.ContentItem{
		ID:                id,
		Slug:              d.Slug,
		Name:              d.Name,
		Kind:              d.Kind,
		OwningApp:         d.OwningApp,
		State:             contentapi.ItemState(d.State),
		TagIDs:            d.TagIDs,
		Description:       d.Description,
		Author:            d.Author,
		Nodes:             d.Nodes,
		OrganizationNames: d.OrganizationNames,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

type editionDocument struct {
	ID            string             `bson:"_id"`
	PanopticonID  string             `bson:"panopticon_id"`
	Slug          string             `bson:"slug"`
	Title         string             `bson:"title"`
	VersionNumber int                `bson:"version_number"`
	State         string             `bson:"state"`
	Payload       contentapi.Payload `bson:"payload"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d editionDocument) toEdition() (contentapi.Edition, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return contentapi.Edition{}, fmt.Errorf("edition %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.PanopticonID)
	if err != nil {
		return contentapi.Edition{}, fmt.Errorf("edition %q panopticon id: %w", d.ID, err)
	}
	return contentapi.Edition{
		ID:            id,
		PanopticonID:  owner,
		Slug:          d.Slug,
		Title:         d.Title,
		VersionNumber: d.VersionNumber,
		State:         contentapi.EditionState(d.State),
		Payload:       d.Payload,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

type curatedListDocument struct {
	ID          string   `bson:"_id"`
	TagIDs      []string `bson:"tag_ids"`
	ArtefactIDs []string `bson:"artefact_ids"`
}

// Tag operations

func (r *Repository) ListTagTypes(ctx context.Context) ([]string, error) {
	values, err := r.tags.Distinct(ctx, "tag_type", bson.D{})
	if err != nil {
		return nil, handleMongoError("list tag types", err)
	}
	types := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			types = append(types, s)
		}
	}
	return types, nil
}

func (r *Repository) ListTags(ctx context.Context, filter contentapi.TagFilter) ([]contentapi.Tag, error) {
	query := bson.D{}
	if filter.TagType != "" {
		query = append(query, bson.E{Key: "tag_type", Value: filter.TagType})
	}
	if filter.ParentID != "" {
		query = append(query, bson.E{Key: "parent_id", Value: filter.ParentID})
	}
	if filter.RootOnly {
		query = append(query, bson.E{Key: "parent_id", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}})
	}
	return r.findTags(ctx, "list tags", query)
}

func (r *Repository) TagsByID(ctx context.Context, tagID string) ([]contentapi.Tag, error) {
	return r.findTags(ctx, "tags by id", bson.D{{Key: "tag_id", Value: tagID}})
}

func (r *Repository) GetTag(ctx context.Context, tagID, tagType string) (*contentapi.Tag, error) {
	var doc tagDocument
	err := r.tags.FindOne(ctx, bson.D{
		{Key: "tag_id", Value: tagID},
		{Key: "tag_type", Value: tagType},
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contentapi.ErrTagNotFound
	}
	if err != nil {
		return nil, handleMongoError("get tag", err)
	}
	tag := doc.toTag()
	return &tag, nil
}

func (r *Repository) TagsByIDs(ctx context.Context, tagIDs []string) ([]contentapi.Tag, error) {
	return r.findTags(ctx, "tags by ids", bson.D{{Key: "tag_id", Value: bson.D{{Key: "$in", Value: tagIDs}}}})
}

func (r *Repository) findTags(ctx context.Context, operation string, query bson.D) ([]contentapi.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "tag_type", Value: 1}, {Key: "tag_id", Value: 1}})
	cursor, err := r.tags.Find(ctx, query, opts)
	if err != nil {
		return nil, handleMongoError(operation, err)
	}
	var docs []tagDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError(operation, err)
	}
	tags := make([]contentapi.Tag, len(docs))
	for i, d := range docs {
		tags[i] = d.toTag()
	}
	return tags, nil
}

// Content item operations

func (r *Repository) FindItems(ctx context.Context, filter contentapi.ItemFilter) ([]contentapi.ContentItem, error) {
	query := bson.D{}
	if filter.State != "" {
		query = append(query, bson.E{Key: "state", Value: string(filter.State)})
	}
	if filter.Kind != "" {
		query = append(query, bson.E{Key: "kind", Value: filter.Kind})
	}
	var tagConds bson.A
	if len(filter.AnyTagIDs) > 0 {
		tagConds = append(tagConds, bson.D{{Key: "tag_ids", Value: bson.D{{Key: "$in", Value: filter.AnyTagIDs}}}})
	}
	if len(filter.AllTagIDs) > 0 {
		tagConds = append(tagConds, bson.D{{Key: "tag_ids", Value: bson.D{{Key: "$all", Value: filter.AllTagIDs}}}})
	}
	if len(tagConds) > 0 {
		query = append(query, bson.E{Key: "$and", Value: tagConds})
	}
	if filter.Author != "" {
		query = append(query, bson.E{Key: "author", Value: filter.Author})
	}
	if filter.Node != "" {
		query = append(query, bson.E{Key: "node", Value: filter.Node})
	}
	if filter.OrganizationName != "" {
		query = append(query, bson.E{Key: "organization_name", Value: filter.OrganizationName})
	}

	cursor, err := r.artefacts.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, handleMongoError("find items", err)
	}
	var docs []artefactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError("find items", err)
	}
	items := make([]contentapi.ContentItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, slug, role string) (*contentapi.ContentItem, error) {
	query := bson.D{{Key: "slug", Value: slug}}
	if role != "" {
		query = append(query, bson.E{Key: "tag_ids", Value: role})
	}
	var doc artefactDocument
	err := r.artefacts.FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contentapi.ErrItemNotFound
	}
	if err != nil {
		return nil, handleMongoError("get item by slug", err)
	}
	item, err := doc.toItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Edition operations

func (r *Repository) ListEditions(ctx context.Context, itemID uuid.UUID) ([]contentapi.Edition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version_number", Value: 1}, {Key: "_id", Value: 1}})
	return r.findEditions(ctx, "list editions", bson.D{{Key: "panopticon_id", Value: itemID.String()}}, opts)
}

func (r *Repository) PublishedEditions(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]contentapi.Edition, error) {
	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}
	query := bson.D{
		{Key: "panopticon_id", Value: bson.D{{Key: "$in", Value: ids}}},
		{Key: "state", Value: string(contentapi.EditionStatePublished)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "version_number", Value: 1}})
	editions, err := r.findEditions(ctx, "published editions", query, opts)
	if err != nil {
		return nil, err
	}
	// Ascending sort: the highest version per item is stored last
	result := make(map[uuid.UUID]contentapi.Edition, len(editions))
	for _, e := range editions {
		result[e.PanopticonID] = e
	}
	return result, nil
}

func (r *Repository) findEditions(ctx context.Context, operation string, query bson.D, opts *options.FindOptions) ([]contentapi.Edition, error) {
	cursor, err := r.editions.Find(ctx, query, opts)
	if err != nil {
		return nil, handleMongoError(operation, err)
	}
	var docs []editionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError(operation, err)
	}
	editions := make([]contentapi.Edition, 0, len(docs))
	for _, d := range docs {
		e, err := d.toEdition()
		if err != nil {
			return nil, err
		}
		editions = append(editions, e)
	}
	return editions, nil
}

// Curated list operations

func (r *Repository) FindCuratedList(ctx context.Context, tagIDs []string) (*contentapi.CuratedList, error) {
	// Candidate lists contain every requested tag; set equality is checked
	// in memory since $all ignores extra elements
	query := bson.D{{Key: "tag_ids", Value: bson.D{{Key: "$all", Value: tagIDs}}}}
	cursor, err := r.curatedLists.Find(ctx, query)
	if err != nil {
		return nil, handleMongoError("find curated list", err)
	}
	var docs []curatedListDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError("find curated list", err)
	}
	for _, d := range docs {
		list := contentapi.CuratedList{TagIDs: d.TagIDs}
		if !list.MatchesTags(tagIDs) {
			continue
		}
		if id, err := uuid.Parse(d.ID); err == nil {
			list.ID = id
		}
		for _, s := range d.ArtefactIDs {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("curated list %q: %w", d.ID, err)
			}
			list.ItemIDs = append(list.ItemIDs, id)
		}
		return &list, nil
	}
	return nil, nil
}
