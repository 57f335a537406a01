package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got: %s", cfg.Port)
	}
	if cfg.DatabaseType != "memory" {
		t.Errorf("expected memory database, got: %s", cfg.DatabaseType)
	}
	if !cfg.PaginationEnabled || cfg.PageSize != 50 {
		t.Errorf("expected pagination of 50, got: %v/%d", cfg.PaginationEnabled, cfg.PageSize)
	}
	if len(cfg.EditionBearingApps) != 1 || cfg.EditionBearingApps[0] != "publisher" {
		t.Errorf("expected publisher to bear editions, got: %v", cfg.EditionBearingApps)
	}
}

func TestWithPort(t *testing.T) {
	cfg, err := Load(WithPort("9090"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got: %s", cfg.Port)
	}
}

func TestWithPortEmpty(t *testing.T) {
	_, err := Load(WithPort(""))
	if err == nil {
		t.Error("expected error for empty port, got nil")
	}
}

func TestWithDatabase(t *testing.T) {
	tests := []struct {
		name      string
		dbType    string
		url       string
		wantError bool
	}{
		{"memory valid", "memory", "", false},
		{"postgres valid", "postgres", "postgresql://localhost/test", false},
		{"postgres missing url", "postgres", "", true},
		{"mongo valid", "mongo", "mongodb://localhost:27017", false},
		{"mongo missing url", "mongo", "", true},
		{"invalid type", "mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithDatabase(tt.dbType, tt.url))
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if cfg.DatabaseType != tt.dbType {
				t.Errorf("expected database type %s, got: %s", tt.dbType, cfg.DatabaseType)
			}
		})
	}
}

func TestWithPagination(t *testing.T) {
	cfg, err := Load(WithPagination(false, 10))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.PaginationEnabled || cfg.PageSize != 10 {
		t.Errorf("expected disabled pagination of 10, got: %v/%d", cfg.PaginationEnabled, cfg.PageSize)
	}

	if _, err := Load(WithPagination(true, 0)); err == nil {
		t.Error("expected error for zero page size, got nil")
	}
}

func TestRequireAuthNeedsSecret(t *testing.T) {
	cfg := defaults()
	cfg.RequireAuth = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for require auth without secret, got nil")
	}

	if _, err := Load(WithEnvironment("production")); err == nil {
		t.Error("expected error for production without secret, got nil")
	}

	if _, err := Load(WithEnvironment("production"), WithJWT("s3cret", false)); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestWithSearch(t *testing.T) {
	cfg, err := Load(WithSearch("http://search.local", 2*time.Second))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.SearchURL != "http://search.local" || cfg.SearchTimeout != 2*time.Second {
		t.Errorf("unexpected search settings: %s %s", cfg.SearchURL, cfg.SearchTimeout)
	}

	if _, err := Load(WithSearch("", 0)); err == nil {
		t.Error("expected error for empty search URL, got nil")
	}
}

func TestWithContentKinds(t *testing.T) {
	cfg, err := Load(WithContentKinds("guide", "answer"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(cfg.ContentKinds) != 2 {
		t.Errorf("expected 2 kinds, got: %v", cfg.ContentKinds)
	}

	if _, err := Load(WithContentKinds()); err == nil {
		t.Error("expected error for no kinds, got nil")
	}
}

func TestWithAssetsRequiresBucket(t *testing.T) {
	if _, err := Load(WithAssets(AssetConfig{Region: "eu-west-1"})); err == nil {
		t.Error("expected error for empty bucket, got nil")
	}
}

func TestNilOptionIgnored(t *testing.T) {
	if _, err := Load(nil, WithPort("8081")); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}
