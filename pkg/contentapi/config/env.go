package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig maps process environment variables onto ServerConfig. Defaults
// mirror defaults() so WithEnv yields the same config as Load() when
// nothing is set.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// DATABASE_URL alone selects the store: empty or "memory" keeps the
	// memory store, postgres:// and mongodb:// URLs select the matching one.
	DatabaseURL   string `env:"DATABASE_URL"`
	DBSchema      string `env:"CONTENT_DB_SCHEMA" env-default:"content"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"content_api"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" env-default:"false"`
	FixturesPath  string `env:"FIXTURES_PATH"`

	DefaultRole       string `env:"CONTENTAPI_DEFAULT_ROLE"`
	PaginationEnabled bool   `env:"PAGINATION" env-default:"true"`
	PageSize          int    `env:"PAGE_SIZE" env-default:"50"`
	BaseURL           string `env:"API_BASE_URL"`
	WebsiteRoot       string `env:"WEBSITE_ROOT"`

	JWTSecret   string `env:"JWT_SECRET"`
	RequireAuth bool   `env:"REQUIRE_AUTH" env-default:"false"`

	SearchURL     string        `env:"SEARCH_URL"`
	SearchTimeout time.Duration `env:"SEARCH_TIMEOUT" env-default:"5s"`

	AssetBucket          string `env:"ASSET_S3_BUCKET"`
	AssetRegion          string `env:"ASSET_S3_REGION" env-default:"us-east-1"`
	AssetEndpoint        string `env:"ASSET_S3_ENDPOINT"`
	AssetAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AssetSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AssetUsePathStyle    bool   `env:"ASSET_S3_USE_PATH_STYLE" env-default:"false"`
	AssetKeyPrefix       string `env:"ASSET_S3_KEY_PREFIX"`
	AssetPublicBaseURL   string `env:"ASSET_PUBLIC_BASE_URL"`
	AssetPresignDuration int    `env:"ASSET_PRESIGN_DURATION" env-default:"3600"`

	EditionBearingApps []string `env:"EDITION_BEARING_APPS" env-separator:"," env-default:"publisher"`
	ContentKinds       []string `env:"CONTENT_KINDS" env-separator:","`
	MetricsNamespace   string   `env:"METRICS_NAMESPACE" env-default:"content_api"`
}

// WithEnv reads the configuration from the process environment with
// cleanenv. It replaces every field it maps, so programmatic options meant
// to override the environment must come after it.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		dbType, err := databaseTypeFromURL(env.DatabaseURL)
		if err != nil {
			return err
		}
		c.Port = env.Port
		c.Environment = env.Environment
		c.DatabaseType = dbType
		c.DatabaseURL = env.DatabaseURL
		if dbType == "memory" {
			c.DatabaseURL = ""
		}
		c.DBSchema = env.DBSchema
		c.MongoDatabase = env.MongoDatabase
		c.AutoMigrate = env.AutoMigrate
		c.FixturesPath = env.FixturesPath

		c.DefaultRole = env.DefaultRole
		c.PaginationEnabled = env.PaginationEnabled
		c.PageSize = env.PageSize
		c.BaseURL = env.BaseURL
		c.WebsiteRoot = env.WebsiteRoot

		c.JWTSecret = env.JWTSecret
		c.RequireAuth = env.RequireAuth

		c.SearchURL = env.SearchURL
		c.SearchTimeout = env.SearchTimeout

		c.Assets = AssetConfig{
			Bucket:          env.AssetBucket,
			Region:          env.AssetRegion,
			Endpoint:        env.AssetEndpoint,
			AccessKeyID:     env.AssetAccessKeyID,
			SecretAccessKey: env.AssetSecretAccessKey,
			UsePathStyle:    env.AssetUsePathStyle,
			KeyPrefix:       env.AssetKeyPrefix,
			PublicBaseURL:   env.AssetPublicBaseURL,
			PresignDuration: env.AssetPresignDuration,
		}

		c.EditionBearingApps = trimAll(env.EditionBearingApps)
		if kinds := trimAll(env.ContentKinds); len(kinds) > 0 {
			c.ContentKinds = kinds
		}
		c.MetricsNamespace = env.MetricsNamespace
		return nil
	}
}

// databaseTypeFromURL auto-detects the store from the URL scheme
func databaseTypeFromURL(dbURL string) (string, error) {
	switch {
	case dbURL == "" || dbURL == "memory":
		return "memory", nil
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		return "postgres", nil
	case strings.HasPrefix(dbURL, "mongodb://"), strings.HasPrefix(dbURL, "mongodb+srv://"):
		return "mongo", nil
	}
	return "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'mongodb://...')", dbURL)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
