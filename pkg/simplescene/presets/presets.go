package presets

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/config"
	memoryrepo "github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	"github.com/tendant/simple-scene/pkg/simplescene/scenekey"
	fsstorage "github.com/tendant/simple-scene/pkg/simplescene/storage/fs"
	memorystorage "github.com/tendant/simple-scene/pkg/simplescene/storage/memory"
)

// Configuration Presets
//
// This package provides easy-to-use configuration presets for common use cases.
// Presets eliminate boilerplate and provide sensible defaults while remaining customizable.

// NewDevelopment creates a service configured for local development.
//
// Features:
//   - In-memory database (instant startup, no setup required)
//   - Filesystem archives at ./dev-data/ (persistent across restarts)
//   - Date-based archive keys (easy to browse on disk)
//   - No external services required
//
// Returns:
//   - Service instance
//   - Cleanup function (call with defer to remove dev-data directory)
//   - Error if setup fails
//
// Example:
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	// Use service...
func NewDevelopment(opts ...DevelopmentOption) (simplescene.Service, func(), error) {
	// Default configuration
	cfg := &devConfig{
		archiveDir: "./dev-data",
		port:       "8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create repository (in-memory for development)
	repo := memoryrepo.New()

	// Create filesystem archive store
	fsStore, err := fsstorage.New(fsstorage.Config{
		BaseDir: cfg.archiveDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem archive store: %w", err)
	}

	// Build service options
	options := []simplescene.Option{
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("fs", fsStore),
		simplescene.WithKeyGenerator(scenekey.NewRecommendedGenerator()),
	}

	// Create service
	svc, err := simplescene.New(options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	// Cleanup function
	cleanup := func() {
		os.RemoveAll(cfg.archiveDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates a service configured for unit and integration tests.
//
// Features:
//   - In-memory database (isolated per test)
//   - In-memory archives (fast, no disk I/O)
//   - Automatic cleanup via t.Cleanup()
//   - Supports parallel test execution
//
// The testing.T parameter enables automatic cleanup when the test completes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t)
//
//	    // Use service in test...
//	    // Automatic cleanup when test completes
//	}
func NewTesting(t *testing.T, opts ...TestingOption) simplescene.Service {
	// Default configuration
	cfg := &testConfig{}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create repository (in-memory for testing)
	repo := memoryrepo.New()

	// Create memory archive store
	store := memorystorage.New()

	// Build service options
	options := []simplescene.Option{
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("memory", store),
	}

	// Create service
	svc, err := simplescene.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	// Seed fixture scene if requested
	if cfg.sceneName != "" {
		if _, err := svc.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: cfg.sceneName}); err != nil {
			t.Fatalf("failed to create fixture scene: %v", err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		// No explicit cleanup needed for in-memory backends
		// They're garbage collected automatically
	})

	return svc
}

// NewProduction creates a service configured for production deployment.
//
// Features:
//   - Database from environment (DATABASE_URL, DB_SCHEMA)
//   - Archives from environment (ARCHIVE_URL, AWS_* credentials)
//   - Validation of required configuration
//
// Required Environment Variables:
//   - DATABASE_URL: PostgreSQL connection string
//   - ARCHIVE_URL: "file:///path" or "s3://bucket" (memory not allowed)
//
// Optional Environment Variables:
//   - DB_SCHEMA: Postgres schema (default: "scene")
//   - SCENE_KEY_GENERATOR: "flat", "dated" or "sharded"
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_REGION: S3 credentials
//
// Example:
//
//	svc, err := presets.NewProduction()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Use service in production...
func NewProduction(opts ...ProductionOption) (simplescene.Service, error) {
	// Default configuration (loads from environment)
	cfg := &prodConfig{
		databaseType: getEnv("DATABASE_TYPE", "postgres"),
		databaseURL:  getEnv("DATABASE_URL", ""),
		archiveURL:   getEnv("ARCHIVE_URL", ""),
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Validate required configuration
	if cfg.databaseType == "memory" {
		return nil, fmt.Errorf("production preset requires DATABASE_TYPE=postgres (memory not allowed in production)")
	}
	if cfg.databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for production")
	}
	if cfg.archiveURL == "" || cfg.archiveURL == "memory" || cfg.archiveURL == "memory://" {
		return nil, fmt.Errorf("production preset requires persistent archives (set ARCHIVE_URL to file:// or s3://)")
	}

	// Delegate to the config package, explicit preset values winning over
	// anything WithEnv picked up.
	serverCfg, err := config.Load(
		config.WithEnvironment("production"),
		config.WithEnv(""),
		config.WithDatabase(cfg.databaseType, cfg.databaseURL),
		config.WithArchiveURL(cfg.archiveURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load production config: %w", err)
	}

	return serverCfg.BuildService()
}

// Option types for customization

// devConfig holds development preset configuration
type devConfig struct {
	archiveDir string
	port       string
}

// testConfig holds testing preset configuration
type testConfig struct {
	sceneName string
}

// prodConfig holds production preset configuration
type prodConfig struct {
	databaseType string
	databaseURL  string
	archiveURL   string
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevArchiveDir sets the development archive directory
func WithDevArchiveDir(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.archiveDir = dir
	}
}

// WithDevPort sets the development server port
func WithDevPort(port string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.port = port
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestScene pre-creates a scene with the given name as a fixture
func WithTestScene(name string) TestingOption {
	return func(cfg *testConfig) {
		cfg.sceneName = name
	}
}

// ProductionOption is a functional option for NewProduction
type ProductionOption func(*prodConfig)

// WithProdDatabase sets the production database configuration
func WithProdDatabase(dbType, url string) ProductionOption {
	return func(cfg *prodConfig) {
		cfg.databaseType = dbType
		cfg.databaseURL = url
	}
}

// WithProdArchive sets the production archive connection string
func WithProdArchive(archiveURL string) ProductionOption {
	return func(cfg *prodConfig) {
		cfg.archiveURL = archiveURL
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// TestService is a convenience function that creates a test service
// This is an alias for NewTesting with no options
func TestService(t *testing.T) simplescene.Service {
	return NewTesting(t)
}
