package config

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/auth"
)

const fixturesYAML = `
tags:
  - tag_id: crime
    tag_type: section
    title: Crime
items:
  - slug: batman
    name: Batman
    kind: guide
    owning_app: publisher
    state: live
    tag_ids: [crime]
editions:
  - item: batman
    title: Batman
    version_number: 1
    state: published
  - item: batman
    title: Secret draft
    version_number: 2
    state: draft
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(fixturesYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildServiceFromFixtures(t *testing.T) {
	cfg, err := Load(WithFixtures(writeFixtures(t)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	components, err := cfg.BuildService(context.Background(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer components.Close()

	if components.JWT != nil {
		t.Error("expected development config without secret to skip JWT")
	}
	if got := components.Authorizer.UnpublishedAccess(context.Background()); got != contentapi.AccessGranted {
		t.Errorf("expected open access in development, got %v", got)
	}

	view, err := components.Service.Item(context.Background(), contentapi.ItemQuery{Slug: "batman"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Item.Name != "Batman" {
		t.Errorf("expected Batman, got %q", view.Item.Name)
	}
}

func TestBuildServiceWithJWT(t *testing.T) {
	cfg, err := Load(WithJWT("s3cret", true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	components, err := cfg.BuildService(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer components.Close()

	if components.JWT == nil {
		t.Fatal("expected a JWT authorizer")
	}
	if _, ok := components.Authorizer.(*auth.JWTAuthorizer); !ok {
		t.Errorf("expected JWT authorizer, got %T", components.Authorizer)
	}
}

func TestBuildServiceEditionAccess(t *testing.T) {
	tests := []struct {
		name       string
		options    []Option
		wantJWT    bool
		wantStatus int
	}{
		{"development is open", []Option{WithEnvironment("development")}, false, http.StatusOK},
		{"development with secret stays open", []Option{WithEnvironment("development"), WithJWT("s3cret", false)}, false, http.StatusOK},
		{"development requiring auth", []Option{WithEnvironment("development"), WithJWT("s3cret", true)}, true, http.StatusUnauthorized},
		{"staging without secret", []Option{WithEnvironment("staging")}, false, http.StatusUnauthorized},
		{"staging with secret", []Option{WithEnvironment("staging"), WithJWT("s3cret", false)}, true, http.StatusUnauthorized},
		{"production", []Option{WithEnvironment("production"), WithJWT("s3cret", false)}, true, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(append([]Option{WithFixtures(writeFixtures(t))}, tt.options...)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			components, err := cfg.BuildService(context.Background(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer components.Close()

			if (components.JWT != nil) != tt.wantJWT {
				t.Errorf("expected JWT installed=%v, got %v", tt.wantJWT, components.JWT != nil)
			}

			version := 2
			view, err := components.Service.Item(context.Background(), contentapi.ItemQuery{Slug: "batman", Edition: &version})
			if tt.wantStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if view.Edition.Title != "Secret draft" {
					t.Errorf("expected draft edition, got %q", view.Edition.Title)
				}
				return
			}
			if got := contentapi.KindOf(err).Status(); got != tt.wantStatus {
				t.Errorf("expected status %d for anonymous edition request, got %d (err=%v)", tt.wantStatus, got, err)
			}
			if view != nil {
				t.Errorf("expected no view, got edition %q", view.Edition.Title)
			}
		})
	}
}

func TestBuildServiceMissingFixtures(t *testing.T) {
	cfg, err := Load(WithFixtures(filepath.Join(t.TempDir(), "missing.yaml")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cfg.BuildService(context.Background(), nil); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestPingPostgresRequiresURL(t *testing.T) {
	if err := PingPostgres("", "content"); err == nil {
		t.Error("Expected error for empty database URL")
	}
	if err := PingPostgres("postgres://%zz", "content"); err == nil {
		t.Error("Expected error for unparsable database URL")
	}
}
