package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-api/pkg/contentapi"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	tests := []struct {
		name        string
		err         error
		unavailable bool
		contains    string
	}{
		{"missing table", &pgconn.PgError{Code: "42P01"}, false, "migration required"},
		{"cancelled query", &pgconn.PgError{Code: "57014", Message: "canceling statement"}, true, "list tags"},
		{"other pg error", &pgconn.PgError{Code: "23505", Message: "duplicate key"}, false, "duplicate key (code: 23505)"},
		{"deadline", context.DeadlineExceeded, true, "list tags"},
		{"plain error", errors.New("connection reset"), false, "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.handlePostgresError("list tags", tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(err, contentapi.ErrUnavailable))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestUUIDStrings(t *testing.T) {
	a := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	b := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

	assert.Equal(t, []string{a.String(), b.String()}, uuidStrings([]uuid.UUID{a, b}))
	assert.Empty(t, uuidStrings(nil))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"tags", "content_items", "editions", "curated_lists"} {
		assert.Contains(t, Schema, table)
	}
}
