package simplescene

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrSceneNotFound indicates a scene was not found
	ErrSceneNotFound = errors.New("scene not found")

	// ErrSceneExists indicates a scene with the same name already exists
	ErrSceneExists = errors.New("scene already exists")

	// ErrNodeNotFound indicates a node was not found
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists indicates a node with the same name already exists in the scene
	ErrNodeExists = errors.New("node already exists")

	// ErrAttributeNotFound indicates an attribute was not found
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrAttributeExists indicates an attribute with the same name already exists on the node
	ErrAttributeExists = errors.New("attribute already exists")

	// ErrAttributeType indicates an attribute holds a different type than the operation expects
	ErrAttributeType = errors.New("attribute type mismatch")

	// ErrInvalidAttrType indicates an unknown attribute type string
	ErrInvalidAttrType = errors.New("invalid attribute type")

	// ErrInvalidName indicates a scene, node, or attribute name that fails validation
	ErrInvalidName = errors.New("invalid name")

	// ErrArchiveStoreNotFound indicates an archive store was not registered
	ErrArchiveStoreNotFound = errors.New("archive store not found")

	// ErrArchiveNotFound indicates an archived scene document was not found
	ErrArchiveNotFound = errors.New("archive not found")
)

// SceneError represents an error related to scene operations
type SceneError struct {
	SceneID uuid.UUID
	Op      string
	Err     error
}

func (e *SceneError) Error() string {
	return fmt.Sprintf("scene operation %s failed for scene %s: %v", e.Op, e.SceneID, e.Err)
}

func (e *SceneError) Unwrap() error {
	return e.Err
}

// NodeError represents an error related to node operations
type NodeError struct {
	NodeID uuid.UUID
	Op     string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node operation %s failed for node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// AttributeError represents an error related to attribute operations
type AttributeError struct {
	NodeID uuid.UUID
	Attr   string
	Op     string
	Err    error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute operation %s failed for %s on node %s: %v", e.Op, e.Attr, e.NodeID, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// ConnectionError represents an error related to connection operations
type ConnectionError struct {
	TargetID   uuid.UUID
	TargetAttr string
	Op         string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection operation %s failed for %s on node %s: %v", e.Op, e.TargetAttr, e.TargetID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ArchiveError represents an error related to archive operations
type ArchiveError struct {
	Store string
	Key   string
	Op    string
	Err   error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive operation %s failed for key %s on store %s: %v", e.Op, e.Key, e.Store, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}
