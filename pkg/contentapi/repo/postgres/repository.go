package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/content-api/pkg/contentapi"
)

// Schema creates the tables the repository reads.
//
//go:embed schema.sql
var Schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements contentapi.Store using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies Schema.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		case "57014": // query_canceled
			return fmt.Errorf("%s: %w", operation, contentapi.ErrUnavailable)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, contentapi.ErrUnavailable)
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Tag operations

const tagColumns = `tag_id, tag_type, title, description, short_description, parent_id`

func (r *Repository) ListTagTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tag_type FROM tags ORDER BY tag_type`)
	if err != nil {
		return nil, r.handlePostgresError("list tag types", err)
	}
	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, r.handlePostgresError("list tag types", err)
	}
	return types, nil
}

func (r *Repository) ListTags(ctx context.Context, filter contentapi.TagFilter) ([]contentapi.Tag, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TagType != "" {
		args = append(args, filter.TagType)
		conds = append(conds, fmt.Sprintf("tag_type = $%d", len(args)))
	}
	if filter.ParentID != "" {
		args = append(args, filter.ParentID)
		conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if filter.RootOnly {
		conds = append(conds, "parent_id = ''")
	}

	query := `SELECT ` + tagColumns + ` FROM tags`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY tag_type, tag_id`
	return r.queryTags(ctx, "list tags", query, args...)
}

func (r *Repository) TagsByID(ctx context.Context, tagID string) ([]contentapi.Tag, error) {
	return r.queryTags(ctx, "tags by id",
		`SELECT `+tagColumns+` FROM tags WHERE tag_id = $1 ORDER BY tag_type`, tagID)
}

func (r *Repository) GetTag(ctx context.Context, tagID, tagType string) (*contentapi.Tag, error) {
	tags, err := r.queryTags(ctx, "get tag",
		`SELECT `+tagColumns+` FROM tags WHERE tag_id = $1 AND tag_type = $2`, tagID, tagType)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, contentapi.ErrTagNotFound
	}
	return &tags[0], nil
}

func (r *Repository) TagsByIDs(ctx context.Context, tagIDs []string) ([]contentapi.Tag, error) {
	return r.queryTags(ctx, "tags by ids",
		`SELECT `+tagColumns+` FROM tags WHERE tag_id = ANY($1) ORDER BY tag_type, tag_id`, tagIDs)
}

func (r *Repository) queryTags(ctx context.Context, operation, query string, args ...interface{}) ([]contentapi.Tag, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var tags []contentapi.Tag
	for rows.Next() {
		var t contentapi.Tag
		if err := rows.Scan(&t.TagID, &t.TagType, &t.Title, &t.Description, &t.ShortDescription, &t.ParentID); err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	return tags, nil
}

// Content item operations

const itemColumns = `id, slug, name, kind, owning_app, state, tag_ids, description,
	author, nodes, organization_names, created_at, updated_at`

func (r *Repository) FindItems(ctx context.Context, filter contentapi.ItemFilter) ([]contentapi.ContentItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.State != "" {
		add("state = $%d", string(filter.State))
	}
	if filter.Kind != "" {
		add("kind = $%d", filter.Kind)
	}
	if len(filter.AnyTagIDs) > 0 {
		add("tag_ids && $%d", filter.AnyTagIDs)
	}
	if len(filter.AllTagIDs) > 0 {
		add("tag_ids @> $%d", filter.AllTagIDs)
	}
	if filter.Author != "" {
		add("author = $%d", filter.Author)
	}
	if filter.Node != "" {
		add("$%d = ANY(nodes)", filter.Node)
	}
	if filter.OrganizationName != "" {
		add("$%d = ANY(organization_names)", filter.OrganizationName)
	}

	query := `SELECT ` + itemColumns + ` FROM content_items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY slug`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("find items", err)
	}
	defer rows.Close()

	var items []contentapi.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, r.handlePostgresError("find items", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("find items", err)
	}
	return items, nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, slug, role string) (*contentapi.ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items
		WHERE slug = $1 AND ($2 = '' OR $2 = ANY(tag_ids))`

	item, err := scanItem(r.db.QueryRow(ctx, query, slug, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contentapi.ErrItemNotFound
		}
		return nil, r.handlePostgresError("get item by slug", err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*contentapi.ContentItem, error) {
	var (
		item  contentapi.ContentItem
		state string
	)
	err := row.Scan(&item.ID, &item.Slug, &item.Name, &item.Kind, &item.OwningApp, &state,
		&item.TagIDs, &item.Description, &item.Author, &item.Nodes, &item.OrganizationNames,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.State = contentapi.ItemState(state)
	return &item, nil
}

// Edition operations

const editionColumns = `id, panopticon_id, slug, title, version_number, state, payload, updated_at`

func (r *Repository) ListEditions(ctx context.Context, itemID uuid.UUID) ([]contentapi.Edition, error) {
	return r.queryEditions(ctx, "list editions",
		`SELECT `+editionColumns+` FROM editions WHERE panopticon_id = $1
		 ORDER BY version_number, seq`, itemID)
}

func (r *Repository) PublishedEditions(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]contentapi.Edition, error) {
	editions, err := r.queryEditions(ctx, "published editions",
		`SELECT DISTINCT ON (panopticon_id) `+editionColumns+` FROM editions
		 WHERE panopticon_id = ANY($1::uuid[]) AND state = 'published'
		 ORDER BY panopticon_id, version_number DESC, seq DESC`, uuidStrings(itemIDs))
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]contentapi.Edition, len(editions))
	for _, e := range editions {
		result[e.PanopticonID] = e
	}
	return result, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *Repository) queryEditions(ctx context.Context, operation, query string, args ...interface{}) ([]contentapi.Edition, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var editions []contentapi.Edition
	for rows.Next() {
		var (
			e     contentapi.Edition
			state string
		)
		if err := rows.Scan(&e.ID, &e.PanopticonID, &e.Slug, &e.Title, &e.VersionNumber,
			&state, &e.Payload, &e.UpdatedAt); err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		e.State = contentapi.EditionState(state)
		editions = append(editions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	return editions, nil
}

// Curated list operations

func (r *Repository) FindCuratedList(ctx context.Context, tagIDs []string) (*contentapi.CuratedList, error) {
	query := `SELECT id, tag_ids, item_ids::text[] FROM curated_lists
		WHERE tag_ids @> $1 AND tag_ids <@ $1 LIMIT 1`

	var (
		list    contentapi.CuratedList
		itemIDs []string
	)
	err := r.db.QueryRow(ctx, query, tagIDs).Scan(&list.ID, &list.TagIDs, &itemIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, r.handlePostgresError("find curated list", err)
	}
	for _, s := range itemIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("curated list %s: %w", list.ID, err)
		}
		list.ItemIDs = append(list.ItemIDs, id)
	}
	return &list, nil
}
