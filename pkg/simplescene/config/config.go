package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	repopg "github.com/tendant/simple-scene/pkg/simplescene/repo/postgres"
	"github.com/tendant/simple-scene/pkg/simplescene/scenekey"
	fsstorage "github.com/tendant/simple-scene/pkg/simplescene/storage/fs"
	memorystorage "github.com/tendant/simple-scene/pkg/simplescene/storage/memory"
	s3storage "github.com/tendant/simple-scene/pkg/simplescene/storage/s3"
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
		Port:                "8080",
		Environment:         "development",
		DatabaseType:        "memory",
		DBSchema:            "scene",
		DefaultArchiveStore: "memory",
		ArchiveStores: []ArchiveStoreConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},
		SceneKeyGenerator:  "dated",
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the simple-scene service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: scene)

	// Archive storage configuration
	DefaultArchiveStore string
	ArchiveStores       []ArchiveStoreConfig

	// Archive key generation strategy: "flat", "dated", "sharded"
	SceneKeyGenerator string

	// JWT secret for protecting admin endpoints. Empty disables token auth.
	JWTSecret string

	// Server options
	EnableEventLogging bool
	EnableAdminAPI     bool
}

// ArchiveStoreConfig represents configuration for an archive storage backend
type ArchiveStoreConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.SceneKeyGenerator {
	case "", "flat", "dated", "sharded":
	default:
		return fmt.Errorf("scene key generator must be 'flat', 'dated' or 'sharded', got: %s", c.SceneKeyGenerator)
	}

	// Ensure default archive store exists in configured stores
	found := false
	for _, store := range c.ArchiveStores {
		if store.Name == c.DefaultArchiveStore {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default archive store '%s' not found in configured stores", c.DefaultArchiveStore)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simplescene.Service, error) {
	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	return c.BuildServiceWithRepository(repo)
}

// BuildServiceWithRepository creates a Service instance over an existing
// repository. Callers that also need direct repository access, like the
// admin endpoints, use this to keep service and tooling on one store.
func (c *ServerConfig) BuildServiceWithRepository(repo simplescene.Repository) (simplescene.Service, error) {
	var options []simplescene.Option
	options = append(options, simplescene.WithRepository(repo))

	// Set up archive stores
	for _, storeConfig := range c.ArchiveStores {
		store, err := c.buildArchiveStore(storeConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build archive store %s: %w", storeConfig.Name, err)
		}
		options = append(options, simplescene.WithArchiveStore(storeConfig.Name, store))
	}

	// Set up archive key generator
	gen, err := c.buildKeyGenerator()
	if err != nil {
		return nil, err
	}
	options = append(options, simplescene.WithKeyGenerator(gen))

	// Set up event sink
	if c.EnableEventLogging {
		eventSink := simplescene.NewNoopEventSink() // In a real implementation, you'd use a proper logger
		options = append(options, simplescene.WithEventSink(eventSink))
	}

	return simplescene.New(options...)
}

// BuildRepository creates a Repository based on the configuration.
// It is exported so lightweight tools can share a database connection
// setup without constructing a full service.
func (c *ServerConfig) BuildRepository() (simplescene.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			// set search_path for this session
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildKeyGenerator creates the archive key generator named by the configuration
func (c *ServerConfig) buildKeyGenerator() (scenekey.Generator, error) {
	switch c.SceneKeyGenerator {
	case "", "dated":
		return scenekey.NewDatedGenerator(), nil
	case "flat":
		return scenekey.NewFlatGenerator(), nil
	case "sharded":
		return scenekey.NewShardedGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported scene key generator: %s", c.SceneKeyGenerator)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildArchiveStore creates an ArchiveStore based on the store configuration
func (c *ServerConfig) buildArchiveStore(config ArchiveStoreConfig) (simplescene.ArchiveStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		fsConfig := fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", "./data/archives"),
		}
		return fsstorage.New(fsConfig)

	case "s3":
		s3Config := s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			SessionToken:           getString(config.Config, "session_token", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		}
		return s3storage.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported archive store type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
