package simplescene_test

import (
	"context"
	"testing"

	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

func TestJSONDocumentOperations(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "card_arm", "card")

	t.Run("GetJSON_MissingReadsEmpty", func(t *testing.T) {
		doc, err := svc.GetJSON(ctx, node.ID, "data")
		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Empty(t, doc.Keys())
	})

	t.Run("SetJSON_RoundTripKeepsKeyOrder", func(t *testing.T) {
		doc := orderedmap.New()
		doc.Set("zulu", "last_alphabetically")
		doc.Set("alpha", 1)
		doc.Set("mike", 2.5)

		require.NoError(t, svc.SetJSON(ctx, node.ID, "data", doc))

		stored, err := svc.GetJSON(ctx, node.ID, "data")
		require.NoError(t, err)
		assert.Equal(t, []string{"zulu", "alpha", "mike"}, stored.Keys())

		value, ok := stored.Get("zulu")
		require.True(t, ok)
		assert.Equal(t, "last_alphabetically", value)
	})

	t.Run("SetJSON_Nil", func(t *testing.T) {
		fresh := createTestNode(t, svc, scene.ID, "fresh", "card")
		require.NoError(t, svc.SetJSON(ctx, fresh.ID, "data", nil))

		// A nil document stores an empty mapping, never "null"
		raw, err := svc.GetString(ctx, fresh.ID, "data")
		require.NoError(t, err)
		assert.Equal(t, "{}", raw)

		doc, err := svc.GetJSON(ctx, fresh.ID, "data")
		require.NoError(t, err)
		assert.Empty(t, doc.Keys())
	})

	t.Run("GetJSON_TypeMismatch", func(t *testing.T) {
		require.NoError(t, svc.SetInt(ctx, node.ID, "frame", simplescene.Int(1001)))

		_, err := svc.GetJSON(ctx, node.ID, "frame")
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrAttributeType)
	})

	t.Run("JSONPath", func(t *testing.T) {
		require.NoError(t, svc.SetJSONPath(ctx, node.ID, "data", "render.samples", 64))

		result, err := svc.GetJSONPath(ctx, node.ID, "data", "render.samples")
		assert.NoError(t, err)
		assert.True(t, result.Exists())
		assert.Equal(t, int64(64), result.Int())

		// Earlier keys survive the nested write
		result, err = svc.GetJSONPath(ctx, node.ID, "data", "zulu")
		require.NoError(t, err)
		assert.Equal(t, "last_alphabetically", result.String())
	})

	t.Run("JSONPath_MissingReadsNonexistent", func(t *testing.T) {
		result, err := svc.GetJSONPath(ctx, node.ID, "data", "no.such.path")
		assert.NoError(t, err)
		assert.False(t, result.Exists())
	})

	t.Run("DeleteJSONPath", func(t *testing.T) {
		require.NoError(t, svc.DeleteJSONPath(ctx, node.ID, "data", "render.samples"))

		result, err := svc.GetJSONPath(ctx, node.ID, "data", "render.samples")
		require.NoError(t, err)
		assert.False(t, result.Exists())
	})

	t.Run("DeleteJSONPath_MissingIsNoop", func(t *testing.T) {
		fresh := createTestNode(t, svc, scene.ID, "untouched", "card")
		err := svc.DeleteJSONPath(ctx, fresh.ID, "data", "anything")
		assert.NoError(t, err)

		has, err := svc.HasAttribute(ctx, fresh.ID, "data")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestJSONAccess(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "card_arm", "card")

	data := simplescene.NewJSONAccess(svc, "data")
	assert.Equal(t, "data", data.Attr())

	t.Run("RoundTrip", func(t *testing.T) {
		doc := orderedmap.New()
		doc.Set("color", "red")
		doc.Set("weight", 3)
		require.NoError(t, data.Set(ctx, node, doc))

		stored, err := data.Get(ctx, node)
		require.NoError(t, err)
		assert.Equal(t, []string{"color", "weight"}, stored.Keys())
	})

	t.Run("SnapshotSemantics", func(t *testing.T) {
		doc, err := data.Get(ctx, node)
		require.NoError(t, err)
		doc.Set("color", "blue")

		// Nothing was written back; the store still has the old value
		stored, err := data.Get(ctx, node)
		require.NoError(t, err)
		value, _ := stored.Get("color")
		assert.Equal(t, "red", value)
	})

	t.Run("Bind", func(t *testing.T) {
		prop := data.Bind(node)

		doc := orderedmap.New()
		doc.Set("color", "green")
		require.NoError(t, prop.Set(ctx, doc))

		stored, err := prop.Get(ctx)
		require.NoError(t, err)
		value, _ := stored.Get("color")
		assert.Equal(t, "green", value)
	})
}

func TestJSONDirectAccess(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "card_arm", "card")

	defaults := orderedmap.New()
	defaults.Set("version", 1)
	defaults.Set("color", "gray")
	data := simplescene.NewJSONDirectAccess(svc, "data", defaults)

	t.Run("DefaultsShowOnFreshNode", func(t *testing.T) {
		proxy, err := data.Get(ctx, node)
		require.NoError(t, err)

		assert.Equal(t, []string{"version", "color"}, proxy.Keys())
		value, ok := proxy.Get("color")
		require.True(t, ok)
		assert.Equal(t, "gray", value)
	})

	t.Run("SetPersistsMergedDocument", func(t *testing.T) {
		proxy, err := data.Get(ctx, node)
		require.NoError(t, err)
		require.NoError(t, proxy.Set(ctx, "color", "red"))

		// A plain read now sees the merged document, defaults included
		stored, err := svc.GetJSON(ctx, node.ID, "data")
		require.NoError(t, err)
		version, ok := stored.Get("version")
		require.True(t, ok)
		assert.Equal(t, float64(1), version)
		color, _ := stored.Get("color")
		assert.Equal(t, "red", color)
	})

	t.Run("StoredValueOverridesDefault", func(t *testing.T) {
		proxy, err := data.Get(ctx, node)
		require.NoError(t, err)

		value, ok := proxy.Get("color")
		require.True(t, ok)
		assert.Equal(t, "red", value)
	})

	t.Run("Delete", func(t *testing.T) {
		proxy, err := data.Get(ctx, node)
		require.NoError(t, err)
		require.NoError(t, proxy.Set(ctx, "transient", true))
		require.NoError(t, proxy.Delete(ctx, "transient"))

		stored, err := svc.GetJSON(ctx, node.ID, "data")
		require.NoError(t, err)
		_, ok := stored.Get("transient")
		assert.False(t, ok)
	})

	t.Run("DeleteMissingIsNoop", func(t *testing.T) {
		proxy, err := data.Get(ctx, node)
		require.NoError(t, err)
		assert.NoError(t, proxy.Delete(ctx, "never_there"))
	})

	t.Run("DefaultsNeverMutated", func(t *testing.T) {
		value, ok := defaults.Get("color")
		require.True(t, ok)
		assert.Equal(t, "gray", value)
	})

	t.Run("NilDefaults", func(t *testing.T) {
		bare := simplescene.NewJSONDirectAccess(svc, "bare", nil)
		proxy, err := bare.Get(ctx, node)
		require.NoError(t, err)
		assert.Empty(t, proxy.Keys())
	})
}

func TestPathHelpers(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "card_arm", "card")

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, simplescene.SetPath(ctx, svc, node.ID, "data.render.samples", 64))

		result, err := simplescene.GetPath(ctx, svc, node.ID, "data.render.samples")
		assert.NoError(t, err)
		assert.Equal(t, int64(64), result.Int())
	})

	t.Run("IndexedPath", func(t *testing.T) {
		require.NoError(t, simplescene.SetPath(ctx, svc, node.ID, "sequence.items", []string{"a", "b", "c"}))

		result, err := simplescene.GetPath(ctx, svc, node.ID, "sequence.items[1]")
		assert.NoError(t, err)
		assert.Equal(t, "b", result.String())
	})

	t.Run("BareRootReadsWholeDocument", func(t *testing.T) {
		result, err := simplescene.GetPath(ctx, svc, node.ID, "data")
		assert.NoError(t, err)
		assert.True(t, result.IsObject())
		assert.Equal(t, int64(64), result.Get("render.samples").Int())
	})

	t.Run("BareRootWriteRejected", func(t *testing.T) {
		err := simplescene.SetPath(ctx, svc, node.ID, "data", 1)
		assert.Error(t, err)

		err = simplescene.DeletePath(ctx, svc, node.ID, "data")
		assert.Error(t, err)
	})

	t.Run("DeletePath", func(t *testing.T) {
		require.NoError(t, simplescene.DeletePath(ctx, svc, node.ID, "data.render.samples"))

		result, err := simplescene.GetPath(ctx, svc, node.ID, "data.render.samples")
		require.NoError(t, err)
		assert.False(t, result.Exists())
	})

	t.Run("BadPath", func(t *testing.T) {
		_, err := simplescene.GetPath(ctx, svc, node.ID, "")
		assert.Error(t, err)

		_, err = simplescene.GetPath(ctx, svc, node.ID, "data..x")
		assert.Error(t, err)

		_, err = simplescene.GetPath(ctx, svc, node.ID, "data[oops]")
		assert.Error(t, err)
	})
}
