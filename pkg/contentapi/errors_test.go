package contentapi_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/content-api/pkg/contentapi"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantWord   string
	}{
		{contentapi.ErrNotFound, http.StatusNotFound, "not found"},
		{contentapi.ErrTagNotFound, http.StatusNotFound, "not found"},
		{contentapi.ErrItemNotFound, http.StatusNotFound, "not found"},
		{fmt.Errorf("page 9: %w", contentapi.ErrInvalidPage), http.StatusNotFound, "not found"},
		{contentapi.ErrGone, http.StatusGone, "gone"},
		{contentapi.ErrUnprocessable, http.StatusUnprocessableEntity, "unprocessable"},
		{contentapi.ErrUnauthorised, http.StatusUnauthorized, "unauthorised"},
		{contentapi.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("search: %w", contentapi.ErrUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			kind := contentapi.KindOf(tt.err)
			assert.Equal(t, tt.wantStatus, kind.Status())
			assert.Equal(t, tt.wantWord, kind.Keyword())
		})
	}
}

func TestResolutionError(t *testing.T) {
	err := &contentapi.ResolutionError{Op: "get item", Subject: "batman", Err: contentapi.ErrGone}

	assert.Equal(t, `get item "batman": resource gone`, err.Error())
	assert.ErrorIs(t, err, contentapi.ErrGone)
	assert.Equal(t, "This item is no longer available", contentapi.MessageOf(err))

	err.Message = "Custom"
	assert.Equal(t, "Custom", contentapi.MessageOf(fmt.Errorf("wrapped: %w", err)))
}
