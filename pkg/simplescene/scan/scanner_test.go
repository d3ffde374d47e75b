package scan_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	"github.com/tendant/simple-scene/pkg/simplescene/scan"
)

func setupScanner(t *testing.T, nodeCount int) *scan.Scanner {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	scene := &simplescene.Scene{
		ID:        uuid.New(),
		Name:      "scan_scene",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateScene(ctx, scene))

	for i := 0; i < nodeCount; i++ {
		node := &simplescene.Node{
			ID:        uuid.New(),
			SceneID:   scene.ID,
			Name:      fmt.Sprintf("node_%03d", i),
			Kind:      "transform",
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, repo.CreateNode(ctx, node))
	}

	return scan.New(admin.New(repo))
}

func TestScanner_Scan(t *testing.T) {
	scanner := setupScanner(t, 25)
	ctx := context.Background()

	var processed []string
	result, err := scanner.Scan(ctx, scan.ScanOptions{
		BatchSize: 10,
		Processor: processorFunc(func(ctx context.Context, node *simplescene.Node) error {
			processed = append(processed, node.Name)
			return nil
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.TotalFound)
	assert.Equal(t, int64(25), result.TotalProcessed)
	assert.Equal(t, int64(0), result.TotalFailed)
	assert.Len(t, processed, 25)
}

func TestScanner_ScanRecordsFailures(t *testing.T) {
	scanner := setupScanner(t, 5)
	ctx := context.Background()

	result, err := scanner.Scan(ctx, scan.ScanOptions{
		Processor: processorFunc(func(ctx context.Context, node *simplescene.Node) error {
			if strings.HasSuffix(node.Name, "2") {
				return fmt.Errorf("boom")
			}
			return nil
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalFound)
	assert.Equal(t, int64(4), result.TotalProcessed)
	assert.Equal(t, int64(1), result.TotalFailed)
	assert.Len(t, result.FailedIDs, 1)
}

func TestScanner_ScanRequiresProcessor(t *testing.T) {
	scanner := setupScanner(t, 1)
	ctx := context.Background()

	_, err := scanner.Scan(ctx, scan.ScanOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor is required")
}

func TestScanner_DryRun(t *testing.T) {
	scanner := setupScanner(t, 3)
	ctx := context.Background()

	result, err := scanner.Scan(ctx, scan.ScanOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalProcessed)
	assert.Equal(t, int64(0), result.TotalFailed)
}

func TestScanner_ForEach(t *testing.T) {
	scanner := setupScanner(t, 4)
	ctx := context.Background()

	var count int
	result, err := scanner.ForEach(ctx, admin.NewFilters(admin.WithKind("transform")),
		func(ctx context.Context, node *simplescene.Node) error {
			count++
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, int64(4), result.TotalProcessed)
}

func TestScanner_OnProgress(t *testing.T) {
	scanner := setupScanner(t, 12)
	ctx := context.Background()

	var calls int
	var last int64
	_, err := scanner.Scan(ctx, scan.ScanOptions{
		BatchSize: 5,
		Processor: processorFunc(func(ctx context.Context, node *simplescene.Node) error {
			return nil
		}),
		OnProgress: func(processed, total int64) {
			calls++
			last = processed
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(12), last)
}

// processorFunc adapts a plain function for test use.
type processorFunc func(context.Context, *simplescene.Node) error

func (f processorFunc) Process(ctx context.Context, node *simplescene.Node) error {
	return f(ctx, node)
}
