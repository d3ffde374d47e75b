package scenekey

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for archive key generation strategies
type Generator interface {
	// GenerateKey creates the archive key under which a scene export is stored
	GenerateKey(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string
}

// FlatGenerator keeps every export under a single scenes/ prefix, one key per
// scene. Re-exporting a scene overwrites its previous snapshot.
// Layout: scenes/{sceneID}/{name}.json
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string {
	if sceneName != "" {
		return fmt.Sprintf("scenes/%s/%s.json", sceneID, sanitizeName(sceneName))
	}
	return fmt.Sprintf("scenes/%s.json", sceneID)
}

// DatedGenerator shards exports by day so a bucket listing reads as a timeline
// Layout: scenes/2024/01/31/{name}_{sceneID}.json
type DatedGenerator struct{}

func NewDatedGenerator() *DatedGenerator {
	return &DatedGenerator{}
}

func (g *DatedGenerator) GenerateKey(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string {
	day := exportedAt.UTC().Format("2006/01/02")
	if sceneName != "" {
		return fmt.Sprintf("scenes/%s/%s_%s.json", day, sanitizeName(sceneName), sceneID)
	}
	return fmt.Sprintf("scenes/%s/%s.json", day, sceneID)
}

// ShardedGenerator provides Git-style sharding on the scene ID for stores
// that degrade with many keys under one prefix
// Layout: scenes/ab/cd1234ef5678..._{name}.json
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string {
	idStr := strings.ReplaceAll(sceneID.String(), "-", "")

	shardLen := g.ShardLength
	if shardLen <= 0 || shardLen >= len(idStr) {
		shardLen = 2
	}

	shard := idStr[:shardLen]
	remaining := idStr[shardLen:]

	filename := remaining
	if sceneName != "" {
		filename = fmt.Sprintf("%s_%s", remaining, sanitizeName(sceneName))
	}

	return fmt.Sprintf("scenes/%s/%s.json", shard, filename)
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string
}

func NewCustomFuncGenerator(fn func(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(sceneID uuid.UUID, sceneName string, exportedAt time.Time) string {
	return g.GenerateFunc(sceneID, sceneName, exportedAt)
}

// sanitizeName makes a scene name safe as a path component
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(name))
}

// NewRecommendedGenerator returns the recommended generator for new installations
func NewRecommendedGenerator() Generator {
	return NewDatedGenerator()
}
