package simplescene

import (
	"github.com/google/uuid"
)

// CreateSceneRequest contains parameters for creating a scene
type CreateSceneRequest struct {
	Name string
}

// CreateNodeRequest contains parameters for creating a node
type CreateNodeRequest struct {
	SceneID uuid.UUID
	Name    string
	Kind    string
}

// UpdateNodeRequest contains parameters for updating a node
type UpdateNodeRequest struct {
	Node *Node
}

// ExportSceneRequest contains parameters for exporting a scene to an archive store
type ExportSceneRequest struct {
	SceneID uuid.UUID

	// Archive selects the archive store by registration name. May be empty
	// when exactly one store is registered.
	Archive string

	// Key overrides the generated archive key when non-empty.
	Key string
}

// ImportSceneRequest contains parameters for recreating a scene from an archive
type ImportSceneRequest struct {
	// Archive selects the archive store by registration name. May be empty
	// when exactly one store is registered.
	Archive string

	Key string

	// SceneName overrides the scene name recorded in the archive when
	// non-empty. The resulting name must not collide with an existing scene.
	SceneName string
}
