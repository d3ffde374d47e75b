package simplescene_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
)

func TestConnectionOperations(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "rig")
	card := createTestNode(t, svc, scene.ID, "card_arm", "card")
	hips := createTestNode(t, svc, scene.ID, "hips", "joint")
	chest := createTestNode(t, svc, scene.ID, "chest", "joint")

	t.Run("GetConnection_MissingSlot", func(t *testing.T) {
		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		assert.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("SetConnection_CreatesSlot", func(t *testing.T) {
		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(hips))
		assert.NoError(t, err)

		// The slot is backed by a message attribute created on demand
		attr, err := svc.GetAttribute(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.Equal(t, simplescene.AttrTypeMessage, attr.Type)

		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		assert.NoError(t, err)
		require.NotNil(t, source)
		assert.Equal(t, hips.ID, source.ID)
	})

	t.Run("SetConnection_Replaces", func(t *testing.T) {
		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(chest))
		assert.NoError(t, err)

		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.Equal(t, chest.ID, source.ID)

		conns, err := svc.Connections(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	})

	t.Run("SetConnection_ByName", func(t *testing.T) {
		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnString("hips"))
		assert.NoError(t, err)

		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.Equal(t, hips.ID, source.ID)
	})

	t.Run("SetConnection_UnknownName", func(t *testing.T) {
		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnString("no_such_node"))
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("SetConnection_NameIsSceneScoped", func(t *testing.T) {
		other := createTestScene(t, svc, "other_scene")
		createTestNode(t, svc, other.ID, "only_elsewhere", "joint")

		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnString("only_elsewhere"))
		assert.Error(t, err)
		assert.ErrorIs(t, err, simplescene.ErrNodeNotFound)
	})

	t.Run("SetConnection_EmptyDisconnects", func(t *testing.T) {
		require.NoError(t, svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(hips)))

		err := svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnValue{})
		assert.NoError(t, err)

		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		assert.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("Disconnect_KeepsAttribute", func(t *testing.T) {
		require.NoError(t, svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(hips)))
		require.NoError(t, svc.Disconnect(ctx, card.ID, "mirror"))

		source, err := svc.GetConnection(ctx, card.ID, "mirror")
		assert.NoError(t, err)
		assert.Nil(t, source)

		has, err := svc.HasAttribute(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("Disconnect_EmptySlotIsNoop", func(t *testing.T) {
		err := svc.Disconnect(ctx, card.ID, "mirror")
		assert.NoError(t, err)
	})

	t.Run("RepeatConnect_IsNoop", func(t *testing.T) {
		require.NoError(t, svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(hips)))
		require.NoError(t, svc.SetConnection(ctx, card.ID, "mirror", simplescene.ConnNode(hips)))

		conns, err := svc.Connections(ctx, card.ID, "mirror")
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	})
}

// TestGetConnection_FirstInInsertionOrder drives the repository directly to
// lay down several inbound edges on one slot, which the service-level writes
// never do on their own.
func TestGetConnection_FirstInInsertionOrder(t *testing.T) {
	repo := memory.New()
	svc, err := simplescene.New(simplescene.WithRepository(repo))
	require.NoError(t, err)
	ctx := context.Background()

	scene := createTestScene(t, svc, "rig")
	target := createTestNode(t, svc, scene.ID, "target", "card")
	first := createTestNode(t, svc, scene.ID, "first", "joint")
	second := createTestNode(t, svc, scene.ID, "second", "joint")

	_, err = svc.EnsureMessage(ctx, target.ID, "mirror")
	require.NoError(t, err)
	_, err = repo.Connect(ctx, first.ID, target.ID, "mirror")
	require.NoError(t, err)
	_, err = repo.Connect(ctx, second.ID, target.ID, "mirror")
	require.NoError(t, err)

	source, err := svc.GetConnection(ctx, target.ID, "mirror")
	require.NoError(t, err)
	assert.Equal(t, first.ID, source.ID)

	// Disconnect clears every inbound edge, not just the first
	require.NoError(t, svc.Disconnect(ctx, target.ID, "mirror"))
	conns, err := svc.Connections(ctx, target.ID, "mirror")
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestSingleConnectionAccess(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "rig")
	card := createTestNode(t, svc, scene.ID, "card_arm", "card")
	hips := createTestNode(t, svc, scene.ID, "hips", "joint")
	chest := createTestNode(t, svc, scene.ID, "chest", "joint")

	mirror := simplescene.NewSingleConnectionAccess(svc, "mirror")
	assert.Equal(t, "mirror", mirror.Attr())

	t.Run("Connect", func(t *testing.T) {
		require.NoError(t, mirror.Connect(ctx, card, hips))

		source, err := mirror.Get(ctx, card)
		assert.NoError(t, err)
		require.NotNil(t, source)
		assert.Equal(t, hips.ID, source.ID)
	})

	t.Run("ConnectName", func(t *testing.T) {
		require.NoError(t, mirror.ConnectName(ctx, card, "chest"))

		source, err := mirror.Get(ctx, card)
		require.NoError(t, err)
		assert.Equal(t, chest.ID, source.ID)
	})

	t.Run("SetEmpty", func(t *testing.T) {
		require.NoError(t, mirror.Set(ctx, card, simplescene.ConnValue{}))

		source, err := mirror.Get(ctx, card)
		assert.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("Disconnect", func(t *testing.T) {
		require.NoError(t, mirror.Connect(ctx, card, hips))
		require.NoError(t, mirror.Disconnect(ctx, card))

		source, err := mirror.Get(ctx, card)
		assert.NoError(t, err)
		assert.Nil(t, source)
	})

	t.Run("Bind", func(t *testing.T) {
		prop := mirror.Bind(card)
		require.NoError(t, prop.Set(ctx, simplescene.ConnNode(chest)))

		value, err := prop.Get(ctx)
		require.NoError(t, err)
		assert.True(t, value.IsNode())
		assert.Equal(t, chest.ID, value.Node.ID)
	})
}

func TestSingleStringConnectionAccess(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	scene := createTestScene(t, svc, "rig")
	card := createTestNode(t, svc, scene.ID, "card_arm", "card")
	driver := createTestNode(t, svc, scene.ID, "name_driver", "util")

	label := simplescene.NewSingleStringConnectionAccess(svc, "label_source")
	assert.Equal(t, "label_source", label.Attr())

	t.Run("MissingReadsEmpty", func(t *testing.T) {
		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsEmpty())
	})

	t.Run("SetString", func(t *testing.T) {
		require.NoError(t, label.SetString(ctx, card, "manual"))

		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsString())
		assert.Equal(t, "manual", value.Str)
	})

	t.Run("ConnectionShadowsString", func(t *testing.T) {
		require.NoError(t, label.Connect(ctx, card, driver))

		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsNode())
		assert.Equal(t, driver.ID, value.Node.ID)
	})

	t.Run("DisconnectReadsAsUnset", func(t *testing.T) {
		// Connecting reset the stored string, so after a disconnect the
		// slot reads empty instead of resurrecting "manual"
		require.NoError(t, svc.Disconnect(ctx, card.ID, "label_source"))

		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsEmpty())
	})

	t.Run("StringWriteDisconnects", func(t *testing.T) {
		require.NoError(t, label.Connect(ctx, card, driver))
		require.NoError(t, label.SetString(ctx, card, "typed_in"))

		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsString())
		assert.Equal(t, "typed_in", value.Str)

		conns, err := svc.Connections(ctx, card.ID, "label_source")
		require.NoError(t, err)
		assert.Empty(t, conns)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, label.SetString(ctx, card, "leftover"))
		require.NoError(t, label.Clear(ctx, card))

		value, err := label.Get(ctx, card)
		assert.NoError(t, err)
		assert.True(t, value.IsEmpty())

		// Clearing keeps the slot in place
		has, err := svc.HasAttribute(ctx, card.ID, "label_source")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("ClearMissingSlot", func(t *testing.T) {
		fresh := createTestNode(t, svc, scene.ID, "fresh", "card")
		require.NoError(t, label.Clear(ctx, fresh))

		// Clearing a slot that never existed does not create it
		has, err := svc.HasAttribute(ctx, fresh.ID, "label_source")
		require.NoError(t, err)
		assert.False(t, has)
	})
}
