package config

import (
	"fmt"
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

// WithEnvironment sets the runtime environment (development, staging, production)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database connection
func WithDatabase(dbType, databaseURL string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
			c.DatabaseType = "memory"
			c.DatabaseURL = ""
		case "postgres":
			if databaseURL == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
			c.DatabaseType = "postgres"
			c.DatabaseURL = databaseURL
		default:
			return fmt.Errorf("unsupported database type: %s", dbType)
		}
		return nil
	}
}

// WithDatabaseSchema sets the postgres schema the repository operates in
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		if schema == "" {
			return fmt.Errorf("database schema cannot be empty")
		}
		c.DBSchema = schema
		return nil
	}
}

// WithDefaultArchive selects which configured archive store is the default
func WithDefaultArchive(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("default archive store name cannot be empty")
		}
		c.DefaultArchiveStore = name
		return nil
	}
}

// WithMemoryArchive adds an in-memory archive store.
// An empty name defaults to "memory".
func WithMemoryArchive(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "memory"
		}
		store := ArchiveStoreConfig{
			Name:   name,
			Type:   "memory",
			Config: map[string]interface{}{},
		}
		c.ArchiveStores = upsertArchiveStore(c.ArchiveStores, store)
		return nil
	}
}

// WithFilesystemArchive adds a filesystem-backed archive store.
// An empty name defaults to "fs".
func WithFilesystemArchive(name, baseDir string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "fs"
		}
		if baseDir == "" {
			return fmt.Errorf("base directory cannot be empty")
		}
		store := ArchiveStoreConfig{
			Name: name,
			Type: "fs",
			Config: map[string]interface{}{
				"base_dir": baseDir,
			},
		}
		c.ArchiveStores = upsertArchiveStore(c.ArchiveStores, store)
		return nil
	}
}

// WithS3Archive adds an S3-backed archive store.
// An empty name defaults to "s3".
func WithS3Archive(name, bucket, region string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}
		if bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		store := ArchiveStoreConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		}
		c.ArchiveStores = upsertArchiveStore(c.ArchiveStores, store)
		return nil
	}
}

// WithS3Credentials sets static credentials on an existing S3 archive store
func WithS3Credentials(name, accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		store := findArchiveStore(c, name)
		if store == nil {
			return fmt.Errorf("archive store not found: %s (add it with WithS3Archive first)", name)
		}
		if store.Type != "s3" {
			return fmt.Errorf("archive store %s is not an S3 store", name)
		}
		store.Config["access_key_id"] = accessKeyID
		store.Config["secret_access_key"] = secretAccessKey
		return nil
	}
}

// WithS3Endpoint points an existing S3 archive store at a custom endpoint,
// typically a MinIO or localstack instance.
func WithS3Endpoint(name, endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		store := findArchiveStore(c, name)
		if store == nil {
			return fmt.Errorf("archive store not found: %s (add it with WithS3Archive first)", name)
		}
		if store.Type != "s3" {
			return fmt.Errorf("archive store %s is not an S3 store", name)
		}
		store.Config["endpoint"] = endpoint
		store.Config["use_path_style"] = usePathStyle
		return nil
	}
}

// WithArchiveURL configures the archive store from a connection string in
// the same format as the ARCHIVE_URL environment variable:
// "memory://", "file:///path/to/archives" or "s3://bucket?region=...".
func WithArchiveURL(rawURL string) Option {
	return func(c *ServerConfig) error {
		return applyArchiveURL(rawURL, c)
	}
}

// WithSceneKeyGenerator selects the archive key layout ("flat", "dated" or "sharded")
func WithSceneKeyGenerator(strategy string) Option {
	return func(c *ServerConfig) error {
		switch strategy {
		case "flat", "dated", "sharded":
			c.SceneKeyGenerator = strategy
		default:
			return fmt.Errorf("unsupported scene key generator: %s", strategy)
		}
		return nil
	}
}

// WithJWTSecret enables JWT verification on protected endpoints
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithEventLogging toggles event sink logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithAdminAPI toggles the scene-wide admin endpoints
func WithAdminAPI(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableAdminAPI = enabled
		return nil
	}
}

// WithDefaults resets the configuration to built-in defaults.
// Useful as the first option when composing a config from scratch.
func WithDefaults() Option {
	return func(c *ServerConfig) error {
		*c = defaults()
		return nil
	}
}

func findArchiveStore(c *ServerConfig, name string) *ArchiveStoreConfig {
	for i := range c.ArchiveStores {
		if c.ArchiveStores[i].Name == name {
			return &c.ArchiveStores[i]
		}
	}
	return nil
}
