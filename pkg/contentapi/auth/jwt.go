// Package auth answers the unpublished-access question from a bearer token
// verified by go-chi/jwtauth.
package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/content-api/pkg/contentapi"
)

// PermissionsClaim lists the caller's permissions in the token.
const PermissionsClaim = "permissions"

// AccessUnpublished is the permission that unlocks explicit editions.
const AccessUnpublished = "access_unpublished"

// JWTAuthorizer implements contentapi.Authorizer over tokens placed in the
// request context by Verifier.
type JWTAuthorizer struct {
	tokenAuth *jwtauth.JWTAuth
}

// NewJWTAuthorizer creates an authorizer for HS256 tokens signed with secret.
func NewJWTAuthorizer(secret []byte) *JWTAuthorizer {
	return &JWTAuthorizer{tokenAuth: jwtauth.New("HS256", secret, nil)}
}

// Verifier returns the middleware that parses the bearer token. It never
// rejects a request; requests without a valid token are anonymous.
func (a *JWTAuthorizer) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokenAuth)
}

// Token signs claims, mainly for tests and local tooling.
func (a *JWTAuthorizer) Token(claims map[string]interface{}) (string, error) {
	_, token, err := a.tokenAuth.Encode(claims)
	return token, err
}

func (a *JWTAuthorizer) UnpublishedAccess(ctx context.Context) contentapi.Access {
	token, claims, err := jwtauth.FromContext(ctx)
	// Expired or malformed tokens authenticate no one
	if err != nil || token == nil {
		return contentapi.AccessAnonymous
	}
	if hasPermission(claims[PermissionsClaim], AccessUnpublished) {
		return contentapi.AccessGranted
	}
	return contentapi.AccessDenied
}

func hasPermission(claim interface{}, want string) bool {
	switch v := claim.(type) {
	case []interface{}:
		for _, p := range v {
			if s, ok := p.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == want {
				return true
			}
		}
	case string:
		return v == want
	}
	return false
}

// AllowAll grants unpublished access to every request. It is meant for
// development setups without an identity provider.
var AllowAll = contentapi.AuthorizerFunc(func(context.Context) contentapi.Access {
	return contentapi.AccessGranted
})

// DenyAll treats every request as anonymous. It guards deployments that
// have no signing secret configured.
var DenyAll = contentapi.AuthorizerFunc(func(context.Context) contentapi.Access {
	return contentapi.AccessAnonymous
})
