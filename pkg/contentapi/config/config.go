package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/content-api/pkg/contentapi"
	"github.com/tendant/content-api/pkg/contentapi/assets/s3"
	"github.com/tendant/content-api/pkg/contentapi/auth"
	"github.com/tendant/content-api/pkg/contentapi/repo/memory"
	repomongo "github.com/tendant/content-api/pkg/contentapi/repo/mongo"
	repopg "github.com/tendant/content-api/pkg/contentapi/repo/postgres"
	"github.com/tendant/content-api/pkg/contentapi/search"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DBSchema:           "content",
		MongoDatabase:      "content_api",
		PaginationEnabled:  true,
		PageSize:           contentapi.DefaultPageSize,
		SearchTimeout:      5 * time.Second,
		EditionBearingApps: append([]string(nil), contentapi.DefaultEditionBearingApps...),
		ContentKinds:       append([]string(nil), contentapi.DefaultContentKinds...),
		MetricsNamespace:   "content_api",
	}
}

// ServerConfig represents server configuration for the content API
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType  string // "memory", "postgres", "mongo"
	DatabaseURL   string
	DBSchema      string // Postgres schema to use (default: content)
	MongoDatabase string
	// AutoMigrate applies the Postgres schema on startup.
	AutoMigrate bool
	// FixturesPath seeds the memory store from a YAML file.
	FixturesPath string

	// Request scoping and presentation
	DefaultRole       string
	PaginationEnabled bool
	PageSize          int
	BaseURL           string
	WebsiteRoot       string

	// Unpublished access
	JWTSecret   string
	RequireAuth bool

	// Unified search backend; empty disables /search.json
	SearchURL     string
	SearchTimeout time.Duration

	// Asset bucket; empty Bucket disables asset resolution
	Assets AssetConfig

	EditionBearingApps []string
	ContentKinds       []string
	MetricsNamespace   string
}

// AssetConfig locates attachment objects
type AssetConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
	PublicBaseURL   string
	PresignDuration int
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "mongo":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'mongo'")
	}

	if c.DatabaseType == "mongo" && c.MongoDatabase == "" {
		return errors.New("mongo_database is required when using mongo")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.RequireAuth && c.JWTSecret == "" {
		return errors.New("jwt_secret is required when authentication is required")
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}
	if len(c.ContentKinds) == 0 {
		return errors.New("at least one content kind is required")
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "testing"
}

// Components are the runtime parts built from a ServerConfig.
type Components struct {
	Service    contentapi.Service
	Metrics    *contentapi.Metrics
	Authorizer contentapi.Authorizer
	// JWT is nil when no token verification is installed.
	JWT *auth.JWTAuthorizer
	// Close releases store connections.
	Close func()
}

// BuildService creates the content service and its collaborators. reg may
// be nil, in which case metrics are not registered.
func (c *ServerConfig) BuildService(ctx context.Context, reg prometheus.Registerer) (*Components, error) {
	store, closeStore, err := c.buildStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	metrics := contentapi.NewMetrics(c.MetricsNamespace, reg)
	components := &Components{Metrics: metrics, Close: closeStore}

	var authorizer contentapi.Authorizer
	switch {
	case c.IsDevelopment() && !c.RequireAuth:
		slog.Warn("Unpublished editions are open to every caller", "environment", c.Environment)
		authorizer = auth.AllowAll
	case c.JWTSecret != "":
		components.JWT = auth.NewJWTAuthorizer([]byte(c.JWTSecret))
		authorizer = components.JWT
	default:
		slog.Warn("No JWT secret configured, edition requests will be refused", "environment", c.Environment)
		authorizer = auth.DenyAll
	}
	components.Authorizer = authorizer

	options := []contentapi.Option{
		contentapi.WithStore(store),
		contentapi.WithAuthorizer(authorizer),
		contentapi.WithMetrics(metrics),
		contentapi.WithPagination(c.PaginationEnabled, c.PageSize),
		contentapi.WithContentKinds(c.ContentKinds...),
		contentapi.WithEditionBearingApps(c.EditionBearingApps...),
	}

	if c.SearchURL != "" {
		client, err := search.New(search.Config{BaseURL: c.SearchURL, Timeout: c.SearchTimeout})
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("failed to build search client: %w", err)
		}
		options = append(options, contentapi.WithSearchClient(client))
	}

	if c.Assets.Bucket != "" {
		lookup, err := s3.New(ctx, s3.Config{
			Region:          c.Assets.Region,
			Bucket:          c.Assets.Bucket,
			AccessKeyID:     c.Assets.AccessKeyID,
			SecretAccessKey: c.Assets.SecretAccessKey,
			Endpoint:        c.Assets.Endpoint,
			UsePathStyle:    c.Assets.UsePathStyle,
			KeyPrefix:       c.Assets.KeyPrefix,
			PublicBaseURL:   c.Assets.PublicBaseURL,
			PresignDuration: c.Assets.PresignDuration,
		})
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("failed to build asset lookup: %w", err)
		}
		options = append(options, contentapi.WithAssetLookup(lookup))
	}

	service, err := contentapi.New(options...)
	if err != nil {
		closeStore()
		return nil, err
	}
	components.Service = service
	return components, nil
}

// buildStore creates a Store based on the configuration
func (c *ServerConfig) buildStore(ctx context.Context) (contentapi.Store, func(), error) {
	switch c.DatabaseType {
	case "memory":
		if c.FixturesPath == "" {
			return memory.New(), func() {}, nil
		}
		repo, err := memory.LoadFixturesFile(c.FixturesPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	case "postgres":
		pool, err := newPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return repo, pool.Close, nil
	case "mongo":
		repo, client, err := repomongo.Connect(ctx, c.DatabaseURL, c.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				slog.Warn("Failed to disconnect from mongo", "err", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func newPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres with the session search_path set.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := newPool(context.Background(), databaseURL, schema)
	if err != nil {
		return err
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
