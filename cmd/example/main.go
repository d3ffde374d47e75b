package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/iancoleman/orderedmap"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	pgrepo "github.com/tendant/simple-scene/pkg/simplescene/repo/postgres"
	"github.com/tendant/simple-scene/pkg/simplescene/scenekey"
	fsstorage "github.com/tendant/simple-scene/pkg/simplescene/storage/fs"
)

type DbConfig struct {
	Driver   string `env:"SCENE_DB_DRIVER" env-default:"memory"`
	Port     uint16 `env:"SCENE_PG_PORT" env-default:"5432"`
	Host     string `env:"SCENE_PG_HOST" env-default:"localhost"`
	Name     string `env:"SCENE_PG_NAME" env-default:"scene_db"`
	User     string `env:"SCENE_PG_USER" env-default:"scene"`
	Password string `env:"SCENE_PG_PASSWORD" env-default:"pwd"`

	ArchiveDir string `env:"SCENE_ARCHIVE_DIR" env-default:"./scene-archives"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func NewDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	return pool, err
}

func main() {

	// 1. Load configuration from environment
	var config DbConfig
	cleanenv.ReadEnv(&config)

	// 2. Initialize the repository. The walkthrough defaults to the in-memory
	// repository so it runs without a database; set SCENE_DB_DRIVER=postgres
	// to persist scenes instead.
	var repo simplescene.Repository
	if config.Driver == "postgres" {
		dbconn, err := NewDbPool(context.Background(), config)
		if err != nil {
			slog.Error("Failed to connect to scene db", "err", err)
			os.Exit(-1)
		}
		repo = pgrepo.NewWithPool(dbconn)
	} else {
		repo = memory.New()
	}

	// 3. Initialize the filesystem archive store for exports
	archiveStore, err := fsstorage.New(fsstorage.Config{BaseDir: config.ArchiveDir})
	if err != nil {
		log.Fatalf("Failed to initialize archive store: %v", err)
	}

	// 4. Initialize the scene service
	svc, err := simplescene.New(
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("fs", archiveStore),
		simplescene.WithKeyGenerator(scenekey.NewDatedGenerator()),
	)
	if err != nil {
		log.Fatalf("Failed to initialize scene service: %v", err)
	}

	// 5. Execute the complete scene flow
	err = executeSceneFlow(context.Background(), svc)
	if err != nil {
		log.Fatalf("Scene flow failed: %v", err)
	}

	log.Println("Scene flow completed successfully!")
}

func executeSceneFlow(ctx context.Context, svc simplescene.Service) error {
	// 1. Create a new scene
	log.Println("Creating new scene...")
	scene, err := svc.CreateScene(ctx, simplescene.CreateSceneRequest{Name: "rig_setup"})
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}
	log.Printf("Scene created with ID: %s", scene.ID)

	// 2. Create joint nodes. FindOrCreateNode returns the existing node when
	// the name is already taken within the scene.
	log.Println("Creating joint nodes...")
	hips, err := simplescene.FindOrCreateNode(ctx, svc, scene.ID, "hips", "joint")
	if err != nil {
		return fmt.Errorf("failed to create hips joint: %w", err)
	}
	spine, err := simplescene.FindOrCreateNode(ctx, svc, scene.ID, "spine", "joint")
	if err != nil {
		return fmt.Errorf("failed to create spine joint: %w", err)
	}
	log.Printf("Created joints: %s, %s", hips.Name, spine.Name)

	// 3. Set typed attributes through accessors
	log.Println("Setting typed attributes...")
	side := simplescene.NewStringAccess(svc, "side")
	jointIndex := simplescene.NewIntAccess(svc, "joint_index")
	length := simplescene.NewFloatAccess(svc, "length")

	if err := side.Set(ctx, hips, "center"); err != nil {
		return fmt.Errorf("failed to set side: %w", err)
	}
	if err := jointIndex.Set(ctx, hips, 0); err != nil {
		return fmt.Errorf("failed to set joint index: %w", err)
	}
	if err := length.Set(ctx, spine, 42.5); err != nil {
		return fmt.Errorf("failed to set length: %w", err)
	}

	sideValue, err := side.Get(ctx, hips)
	if err != nil {
		return fmt.Errorf("failed to read side: %w", err)
	}
	log.Printf("hips.side = %q", sideValue)

	// 4. Reading an attribute that was never set yields the missing-value
	// sentinel instead of an error
	radius, err := simplescene.NewFloatAccess(svc, "radius").Get(ctx, hips)
	if err != nil {
		return fmt.Errorf("failed to read radius: %w", err)
	}
	log.Printf("hips.radius (never set) = %v", radius)

	// 5. Resolve nodes by marker attribute rather than stored kind
	log.Println("Resolving nodes by marker attribute...")
	registry := simplescene.NewKindRegistry()
	registry.RegisterMarker("bindable", "bind_pose")
	if err := simplescene.NewStringAccess(svc, "bind_pose").Set(ctx, hips, "t_pose"); err != nil {
		return fmt.Errorf("failed to mark hips as bindable: %w", err)
	}
	bindable, err := simplescene.NodesByResolvedKind(ctx, svc, registry, scene.ID, "bindable")
	if err != nil {
		return fmt.Errorf("failed to resolve bindable nodes: %w", err)
	}
	for _, n := range bindable {
		log.Printf("Bindable node: %s", n.Name)
	}

	// 6. Connect the spine to its parent joint
	log.Println("Connecting spine to parent...")
	parent := simplescene.NewSingleConnectionAccess(svc, "parent")
	if err := parent.Connect(ctx, spine, hips); err != nil {
		return fmt.Errorf("failed to connect parent: %w", err)
	}
	parentNode, err := parent.Get(ctx, spine)
	if err != nil {
		return fmt.Errorf("failed to read parent: %w", err)
	}
	log.Printf("spine.parent -> %s", parentNode.Name)

	// 7. The label source can hold either a literal string or a driving node
	labelSource := simplescene.NewSingleStringConnectionAccess(svc, "label_source")
	if err := labelSource.SetString(ctx, spine, "manual"); err != nil {
		return fmt.Errorf("failed to set label source: %w", err)
	}
	if err := labelSource.Connect(ctx, spine, hips); err != nil {
		return fmt.Errorf("failed to connect label source: %w", err)
	}
	labelValue, err := labelSource.Get(ctx, spine)
	if err != nil {
		return fmt.Errorf("failed to read label source: %w", err)
	}
	if labelValue.IsNode() {
		log.Printf("spine.label_source driven by node %s", labelValue.Node.Name)
	} else {
		log.Printf("spine.label_source = %q", labelValue.Str)
	}

	// 8. Store structured data through the JSON proxy
	log.Println("Writing structured data...")
	defaults := orderedmap.New()
	defaults.Set("version", 1)
	data := simplescene.NewJSONDirectAccess(svc, "data", defaults)
	proxy, err := data.Get(ctx, hips)
	if err != nil {
		return fmt.Errorf("failed to open data document: %w", err)
	}
	if err := proxy.Set(ctx, "color", "red"); err != nil {
		return fmt.Errorf("failed to set color: %w", err)
	}
	log.Printf("hips.data keys: %v", proxy.Keys())

	// 9. Address nested values with dotted paths
	if err := simplescene.SetPath(ctx, svc, hips.ID, "data.render.samples", 64); err != nil {
		return fmt.Errorf("failed to set render samples: %w", err)
	}
	samples, err := simplescene.GetPath(ctx, svc, hips.ID, "data.render.samples")
	if err != nil {
		return fmt.Errorf("failed to read render samples: %w", err)
	}
	log.Printf("hips.data.render.samples = %d", samples.Int())

	// 10. Export the scene to the archive store
	log.Println("Exporting scene...")
	info, err := svc.ExportScene(ctx, simplescene.ExportSceneRequest{SceneID: scene.ID})
	if err != nil {
		return fmt.Errorf("failed to export scene: %w", err)
	}
	log.Printf("Exported %d bytes to key: %s", info.Size, info.Key)

	// 11. Import the archive back as a new scene to verify the round trip
	log.Println("Importing scene copy...")
	copyScene, err := svc.ImportScene(ctx, simplescene.ImportSceneRequest{
		Key:       info.Key,
		SceneName: scene.Name + "_copy",
	})
	if err != nil {
		return fmt.Errorf("failed to import scene: %w", err)
	}
	nodes, err := svc.ListNodes(ctx, copyScene.ID)
	if err != nil {
		return fmt.Errorf("failed to list imported nodes: %w", err)
	}
	log.Printf("Imported scene %q with %d nodes", copyScene.Name, len(nodes))

	return nil
}
