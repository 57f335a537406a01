package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/auth"
)

// accessThroughVerifier runs a request through the verifier and reports the
// access the authorizer grants inside the handler.
func accessThroughVerifier(t *testing.T, a *auth.JWTAuthorizer, header string) contentapi.Access {
	t.Helper()
	var got contentapi.Access
	handler := a.Verifier()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = a.UnpublishedAccess(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/batman.json?edition=1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return got
}

func TestJWTAuthorizer(t *testing.T) {
	authorizer := auth.NewJWTAuthorizer([]byte("s3cret"))

	granted, err := authorizer.Token(map[string]interface{}{
		"sub":                 "editor",
		auth.PermissionsClaim: []string{"signin", auth.AccessUnpublished},
	})
	require.NoError(t, err)

	denied, err := authorizer.Token(map[string]interface{}{
		"sub":                 "reader",
		auth.PermissionsClaim: []string{"signin"},
	})
	require.NoError(t, err)

	foreign, err := auth.NewJWTAuthorizer([]byte("other")).Token(map[string]interface{}{
		auth.PermissionsClaim: auth.AccessUnpublished,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   contentapi.Access
	}{
		{"no token", "", contentapi.AccessAnonymous},
		{"malformed token", "Bearer not-a-token", contentapi.AccessAnonymous},
		{"wrong signature", "Bearer " + foreign, contentapi.AccessAnonymous},
		{"without permission", "Bearer " + denied, contentapi.AccessDenied},
		{"with permission", "Bearer " + granted, contentapi.AccessGranted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accessThroughVerifier(t, authorizer, tt.header))
		})
	}
}

func TestAllowAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, contentapi.AccessGranted, auth.AllowAll.UnpublishedAccess(req.Context()))
}

func TestDenyAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, contentapi.AccessAnonymous, auth.DenyAll.UnpublishedAccess(req.Context()))
}
