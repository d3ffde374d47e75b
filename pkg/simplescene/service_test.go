package simplescene_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/iancoleman/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	memorystorage "github.com/tendant/simple-scene/pkg/simplescene/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplescene.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplescene.Option{},
			expectError: true,
		},
		{
			name: "with repository should succeed",
			options: []simplescene.Option{
				simplescene.WithRepository(memory.New()),
			},
			expectError: false,
		},
		{
			name: "with repository and archive store should succeed",
			options: []simplescene.Option{
				simplescene.WithRepository(memory.New()),
				simplescene.WithArchiveStore("memory", memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplescene.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) simplescene.Service {
	repo := memory.New()
	store := memorystorage.New()
	eventSink := simplescene.NewNoopEventSink()

	svc, err := simplescene.New(
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("memory", store),
		simplescene.WithEventSink(eventSink),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc
}

func createTestScene(t *testing.T, svc simplescene.Service, name string) *simplescene.Scene {
	scene, err := svc.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: name})
	require.NoError(t, err)
	require.NotNil(t, scene)
	return scene
}

func createTestNode(t *testing.T, svc simplescene.Service, sceneID uuid.UUID, name, kind string) *simplescene.Node {
	node, err := svc.CreateNode(context.Background(), simplescene.CreateNodeRequest{
		SceneID: sceneID,
		Name:    name,
		Kind:    kind,
	})
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func TestSceneOperations(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("CreateScene", func(t *testing.T) {
		scene, err := svc.CreateScene(ctx, simplescene.CreateSceneRequest{Name: "shot_010"})
		assert.NoError(t, err)
		assert.NotNil(t, scene)
		assert.Equal(t, "shot_010", scene.Name)
		assert.NotEqual(t, uuid.Nil, scene.ID)
		assert.False(t, scene.CreatedAt.IsZero())
		assert.False(t, scene.UpdatedAt.IsZero())
	})

	t.Run("CreateScene_DuplicateName", func(t *testing.T) {
		scene, err := svc.CreateScene(ctx, simplescene.CreateSceneRequest{Name: "shot_010"})
		assert.Error(t, err)
		assert.Nil(t, scene)
		assert.ErrorIs(t, err, simplescene.ErrSceneExists)
	})

	t.Run("CreateScene_InvalidName", func(t *testing.T) {
		for _, name := range []string{"", "10_shot", "shot 010", "shot/010"} {
			scene, err := svc.CreateScene(ctx, simplescene.CreateSceneRequest{Name: name})
			assert.Error(t, err, "name %q should be rejected", name)
			assert.Nil(t, scene)
			assert.ErrorIs(t, err, simplescene.ErrInvalidName)
		}
	})

	t.Run("GetScene", func(t *testing.T) {
		created := createTestScene(t, svc, "shot_020")

		retrieved, err := svc.GetScene(ctx, created.ID)
		assert.NoError(t, err)
		assert.NotNil(t, retrieved)
		assert.Equal(t, created.ID, retrieved.ID)
		assert.Equal(t, created.Name, retrieved.Name)
	})

	t.Run("GetScene_NotFound", func(t *testing.T) {
		scene, err := svc.GetScene(ctx, uuid.New())
		assert.Error(t, err)
		assert.Nil(t, scene)
		assert.ErrorIs(t, err, simplescene.ErrSceneNotFound)
	})

	t.Run("GetSceneByName", func(t *testing.T) {
		created := createTestScene(t, svc, "shot_030")

		retrieved, err := svc.GetSceneByName(ctx, "shot_030")
		assert.NoError(t, err)
		assert.Equal(t, created.ID, retrieved.ID)

		_, err = svc.GetSceneByName(ctx, "never_created")
		assert.ErrorIs(t, err, simplescene.ErrSceneNotFound)
	})

	t.Run("ListScenes", func(t *testing.T) {
		scenes, err := svc.ListScenes(ctx)
		assert.NoError(t, err)
		// shot_010, shot_020, shot_030 created above
		assert.Len(t, scenes, 3)
		assert.Equal(t, "shot_010", scenes[0].Name)
	})

	t.Run("DeleteScene", func(t *testing.T) {
		scene := createTestScene(t, svc, "disposable")
		node := createTestNode(t, svc, scene.ID, "temp", "camera")

		err := svc.DeleteScene(ctx, scene.ID)
		assert.NoError(t, err)

		_, err = svc.GetScene(ctx, scene.ID)
		assert.ErrorIs(t, err, simplescene.ErrSceneNotFound)

		// Nodes go with the scene
		_, err = svc.GetNode(ctx, node.ID)
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("DeleteScene_NotFound", func(t *testing.T) {
		err := svc.DeleteScene(ctx, uuid.New())
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrSceneNotFound)
	})
}

func TestNodeOperations(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")

	t.Run("CreateNode", func(t *testing.T) {
		node, err := svc.CreateNode(ctx, simplescene.CreateNodeRequest{
			SceneID: scene.ID,
			Name:    "persp",
			Kind:    "Camera",
		})
		assert.NoError(t, err)
		assert.NotNil(t, node)
		assert.Equal(t, scene.ID, node.SceneID)
		assert.Equal(t, "persp", node.Name)
		// Kind tags are canonicalized to lower case
		assert.Equal(t, "camera", node.Kind)
		assert.False(t, node.CreatedAt.IsZero())
	})

	t.Run("CreateNode_DuplicateName", func(t *testing.T) {
		node, err := svc.CreateNode(ctx, simplescene.CreateNodeRequest{
			SceneID: scene.ID,
			Name:    "persp",
			Kind:    "camera",
		})
		assert.Error(t, err)
		assert.Nil(t, node)
		assert.ErrorIs(t, err, simplescene.ErrNodeExists)
	})

	t.Run("CreateNode_SameNameOtherScene", func(t *testing.T) {
		other := createTestScene(t, svc, "shot_020")

		node, err := svc.CreateNode(ctx, simplescene.CreateNodeRequest{
			SceneID: other.ID,
			Name:    "persp",
			Kind:    "camera",
		})
		assert.NoError(t, err)
		assert.NotNil(t, node)
	})

	t.Run("CreateNode_SceneNotFound", func(t *testing.T) {
		node, err := svc.CreateNode(ctx, simplescene.CreateNodeRequest{
			SceneID: uuid.New(),
			Name:    "orphan",
		})
		assert.Error(t, err)
		assert.Nil(t, node)
		assert.ErrorIs(t, err, simplescene.ErrSceneNotFound)
	})

	t.Run("GetNodeByName", func(t *testing.T) {
		node, err := svc.GetNodeByName(ctx, scene.ID, "persp")
		assert.NoError(t, err)
		assert.Equal(t, "persp", node.Name)

		_, err = svc.GetNodeByName(ctx, scene.ID, "missing")
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("ListNodes", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			createTestNode(t, svc, scene.ID, fmt.Sprintf("joint_%d", i), "joint")
		}

		nodes, err := svc.ListNodes(ctx, scene.ID)
		assert.NoError(t, err)
		// persp plus the three joints, in creation order
		require.Len(t, nodes, 4)
		assert.Equal(t, "persp", nodes[0].Name)
		assert.Equal(t, "joint_0", nodes[1].Name)
		assert.Equal(t, "joint_2", nodes[3].Name)
	})

	t.Run("UpdateNode", func(t *testing.T) {
		node := createTestNode(t, svc, scene.ID, "old_name", "mesh")

		node.Name = "new_name"
		updated, err := svc.UpdateNode(ctx, simplescene.UpdateNodeRequest{Node: node})
		assert.NoError(t, err)
		assert.Equal(t, "new_name", updated.Name)

		retrieved, err := svc.GetNode(ctx, node.ID)
		require.NoError(t, err)
		assert.Equal(t, "new_name", retrieved.Name)
		assert.Equal(t, "mesh", retrieved.Kind)
	})

	t.Run("UpdateNode_NameTaken", func(t *testing.T) {
		node := createTestNode(t, svc, scene.ID, "unique_name", "mesh")

		node.Name = "persp"
		_, err := svc.UpdateNode(ctx, simplescene.UpdateNodeRequest{Node: node})
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrNodeExists)
	})

	t.Run("DeleteNode", func(t *testing.T) {
		node := createTestNode(t, svc, scene.ID, "doomed", "mesh")
		require.NoError(t, svc.SetString(ctx, node.ID, "label", simplescene.String("x")))

		err := svc.DeleteNode(ctx, node.ID)
		assert.NoError(t, err)

		_, err = svc.GetNode(ctx, node.ID)
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("DeleteNode_RemovesEdges", func(t *testing.T) {
		target := createTestNode(t, svc, scene.ID, "edge_target", "mesh")
		source := createTestNode(t, svc, scene.ID, "edge_source", "mesh")
		require.NoError(t, svc.SetConnection(ctx, target.ID, "driver", simplescene.ConnNode(source)))

		require.NoError(t, svc.DeleteNode(ctx, source.ID))

		resolved, err := svc.GetConnection(ctx, target.ID, "driver")
		assert.NoError(t, err)
		assert.Nil(t, resolved)
	})
}

func TestAttributeOperations(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "persp", "camera")

	t.Run("EnsureAttribute", func(t *testing.T) {
		attr, err := svc.EnsureAttribute(ctx, node.ID, "focal_length", simplescene.AttrTypeFloat)
		assert.NoError(t, err)
		require.NotNil(t, attr)
		assert.Equal(t, "focal_length", attr.Name)
		assert.Equal(t, simplescene.AttrTypeFloat, attr.Type)
		assert.Equal(t, 0.0, attr.FloatValue)
	})

	t.Run("EnsureAttribute_ExistingWins", func(t *testing.T) {
		// Ensure with a different type returns the existing attribute as is
		attr, err := svc.EnsureAttribute(ctx, node.ID, "focal_length", simplescene.AttrTypeString)
		assert.NoError(t, err)
		require.NotNil(t, attr)
		assert.Equal(t, simplescene.AttrTypeFloat, attr.Type)
	})

	t.Run("EnsureAttribute_InvalidType", func(t *testing.T) {
		attr, err := svc.EnsureAttribute(ctx, node.ID, "bad", simplescene.AttrType("matrix"))
		assert.Error(t, err)
		assert.Nil(t, attr)
		assert.ErrorIs(t, err, simplescene.ErrInvalidAttrType)
	})

	t.Run("EnsureAttribute_InvalidName", func(t *testing.T) {
		attr, err := svc.EnsureAttribute(ctx, node.ID, "bad name", simplescene.AttrTypeString)
		assert.Error(t, err)
		assert.Nil(t, attr)
		assert.ErrorIs(t, err, simplescene.ErrInvalidName)
	})

	t.Run("EnsureMessage", func(t *testing.T) {
		attr, err := svc.EnsureMessage(ctx, node.ID, "look_at")
		assert.NoError(t, err)
		require.NotNil(t, attr)
		assert.Equal(t, simplescene.AttrTypeMessage, attr.Type)
	})

	t.Run("HasAttribute", func(t *testing.T) {
		has, err := svc.HasAttribute(ctx, node.ID, "focal_length")
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = svc.HasAttribute(ctx, node.ID, "never_created")
		assert.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("HasAttribute_NodeNotFound", func(t *testing.T) {
		_, err := svc.HasAttribute(ctx, uuid.New(), "focal_length")
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("ListAttributes", func(t *testing.T) {
		attrs, err := svc.ListAttributes(ctx, node.ID)
		assert.NoError(t, err)
		// focal_length then look_at, in creation order
		require.Len(t, attrs, 2)
		assert.Equal(t, "focal_length", attrs[0].Name)
		assert.Equal(t, "look_at", attrs[1].Name)
	})

	t.Run("GetAttribute_NotFound", func(t *testing.T) {
		attr, err := svc.GetAttribute(ctx, node.ID, "never_created")
		assert.Error(t, err)
		assert.Nil(t, attr)
		assert.ErrorIs(t, err, simplescene.ErrAttributeNotFound)
	})

	t.Run("DeleteAttribute", func(t *testing.T) {
		err := svc.DeleteAttribute(ctx, node.ID, "look_at")
		assert.NoError(t, err)

		has, err := svc.HasAttribute(ctx, node.ID, "look_at")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("DeleteAttribute_NotFound", func(t *testing.T) {
		err := svc.DeleteAttribute(ctx, node.ID, "never_created")
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrAttributeNotFound)
	})
}

func TestRepeatedWrites(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "shot_010")
	node := createTestNode(t, svc, scene.ID, "persp", "camera")
	driver := createTestNode(t, svc, scene.ID, "target", "locator")

	t.Run("ScalarSetTwice", func(t *testing.T) {
		require.NoError(t, svc.SetString(ctx, node.ID, "label", simplescene.String("hero")))
		require.NoError(t, svc.SetString(ctx, node.ID, "label", simplescene.String("hero")))

		value, err := svc.GetString(ctx, node.ID, "label")
		assert.NoError(t, err)
		assert.Equal(t, "hero", value)

		require.NoError(t, svc.SetInt(ctx, node.ID, "frame", simplescene.Int(1001)))
		require.NoError(t, svc.SetInt(ctx, node.ID, "frame", simplescene.Int(1001)))

		frame, err := svc.GetInt(ctx, node.ID, "frame")
		assert.NoError(t, err)
		assert.Equal(t, int64(1001), frame)
	})

	t.Run("ConnectTwice", func(t *testing.T) {
		require.NoError(t, svc.SetConnection(ctx, node.ID, "look_at", simplescene.ConnNode(driver)))
		require.NoError(t, svc.SetConnection(ctx, node.ID, "look_at", simplescene.ConnNode(driver)))

		resolved, err := svc.GetConnection(ctx, node.ID, "look_at")
		assert.NoError(t, err)
		require.NotNil(t, resolved)
		assert.Equal(t, driver.ID, resolved.ID)

		// The repeated connect replaced the edge rather than stacking a second one
		conns, err := svc.Connections(ctx, node.ID, "look_at")
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	})

	t.Run("DisconnectTwice", func(t *testing.T) {
		require.NoError(t, svc.Disconnect(ctx, node.ID, "look_at"))
		require.NoError(t, svc.Disconnect(ctx, node.ID, "look_at"))

		resolved, err := svc.GetConnection(ctx, node.ID, "look_at")
		assert.NoError(t, err)
		assert.Nil(t, resolved)
	})

	t.Run("StringConnectionSetTwice", func(t *testing.T) {
		require.NoError(t, svc.SetStringConnection(ctx, node.ID, "image_plane", simplescene.ConnString("front.jpg")))
		require.NoError(t, svc.SetStringConnection(ctx, node.ID, "image_plane", simplescene.ConnString("front.jpg")))

		value, err := svc.GetStringConnection(ctx, node.ID, "image_plane")
		assert.NoError(t, err)
		assert.True(t, value.IsString())
		assert.Equal(t, "front.jpg", value.Str)
	})

	t.Run("JSONSetTwice", func(t *testing.T) {
		doc := orderedmap.New()
		doc.Set("samples", 64)
		require.NoError(t, svc.SetJSON(ctx, node.ID, "render", doc))
		require.NoError(t, svc.SetJSON(ctx, node.ID, "render", doc))

		stored, err := svc.GetJSON(ctx, node.ID, "render")
		assert.NoError(t, err)
		assert.Equal(t, []string{"samples"}, stored.Keys())
	})
}
