package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the content store
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "postgres", "mongo":
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'mongo', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMongoDatabase sets the database name (for Mongo)
func WithMongoDatabase(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("mongo database name cannot be empty")
		}
		c.MongoDatabase = name
		return nil
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithFixtures seeds the memory store from a YAML file
func WithFixtures(path string) Option {
	return func(c *ServerConfig) error {
		c.FixturesPath = path
		return nil
	}
}

// WithDefaultRole scopes requests without a role parameter
func WithDefaultRole(role string) Option {
	return func(c *ServerConfig) error {
		c.DefaultRole = role
		return nil
	}
}

// WithPagination enables or disables paging of list endpoints
func WithPagination(enabled bool, pageSize int) Option {
	return func(c *ServerConfig) error {
		if pageSize <= 0 {
			return fmt.Errorf("page size must be positive, got %d", pageSize)
		}
		c.PaginationEnabled = enabled
		c.PageSize = pageSize
		return nil
	}
}

// WithURLs sets the public API root and the website root used for web_url
func WithURLs(baseURL, websiteRoot string) Option {
	return func(c *ServerConfig) error {
		c.BaseURL = baseURL
		c.WebsiteRoot = websiteRoot
		return nil
	}
}

// WithJWT enables token based unpublished access
func WithJWT(secret string, require bool) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("jwt secret cannot be empty")
		}
		c.JWTSecret = secret
		c.RequireAuth = require
		return nil
	}
}

// WithSearch configures the unified search backend
func WithSearch(baseURL string, timeout time.Duration) Option {
	return func(c *ServerConfig) error {
		if baseURL == "" {
			return fmt.Errorf("search URL cannot be empty")
		}
		c.SearchURL = baseURL
		if timeout > 0 {
			c.SearchTimeout = timeout
		}
		return nil
	}
}

// WithAssets configures the attachment bucket
func WithAssets(assets AssetConfig) Option {
	return func(c *ServerConfig) error {
		if assets.Bucket == "" {
			return fmt.Errorf("asset bucket cannot be empty")
		}
		c.Assets = assets
		return nil
	}
}

func WithEditionBearingApps(apps ...string) Option {
	return func(c *ServerConfig) error {
		c.EditionBearingApps = append([]string(nil), apps...)
		return nil
	}
}

// WithContentKinds replaces the known publisher kinds
func WithContentKinds(kinds ...string) Option {
	return func(c *ServerConfig) error {
		if len(kinds) == 0 {
			return fmt.Errorf("at least one content kind is required")
		}
		c.ContentKinds = append([]string(nil), kinds...)
		return nil
	}
}

func WithMetricsNamespace(namespace string) Option {
	return func(c *ServerConfig) error {
		c.MetricsNamespace = namespace
		return nil
	}
}
