package simplescene

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for scene-graph persistence.
//
// All primitives that take a node ID distinguish a missing node from a
// missing attribute: the former returns ErrNodeNotFound, the latter
// ErrAttributeNotFound. The service layer relies on that distinction to
// absorb attribute absence into defaults while letting node absence
// propagate.
type Repository interface {
	// Scene operations
	CreateScene(ctx context.Context, scene *Scene) error
	GetScene(ctx context.Context, id uuid.UUID) (*Scene, error)
	GetSceneByName(ctx context.Context, name string) (*Scene, error)
	ListScenes(ctx context.Context) ([]*Scene, error)
	DeleteScene(ctx context.Context, id uuid.UUID) error

	// Node operations
	CreateNode(ctx context.Context, node *Node) error
	GetNode(ctx context.Context, id uuid.UUID) (*Node, error)
	GetNodeByName(ctx context.Context, sceneID uuid.UUID, name string) (*Node, error)
	ListNodes(ctx context.Context, sceneID uuid.UUID) ([]*Node, error)
	UpdateNode(ctx context.Context, node *Node) error
	// DeleteNode removes the node together with its attributes and every
	// connection touching it, in either direction.
	DeleteNode(ctx context.Context, id uuid.UUID) error

	// Attribute operations
	HasAttribute(ctx context.Context, nodeID uuid.UUID, name string) (bool, error)
	CreateAttribute(ctx context.Context, attr *Attribute) error
	GetAttribute(ctx context.Context, nodeID uuid.UUID, name string) (*Attribute, error)
	// SetAttribute overwrites the value fields of an existing attribute.
	// The stored type is never changed by a value write.
	SetAttribute(ctx context.Context, attr *Attribute) error
	// ListAttributes returns the node's attributes in creation order.
	ListAttributes(ctx context.Context, nodeID uuid.UUID) ([]*Attribute, error)
	DeleteAttribute(ctx context.Context, nodeID uuid.UUID, name string) error

	// Connection operations
	//
	// Connect requires the target attribute to exist and is idempotent for
	// an identical edge. ListConnections returns inbound edges of a slot in
	// insertion order. Disconnect removes all inbound edges of a slot and
	// reports how many were removed; it never touches the attribute itself.
	// ListConnections and Disconnect tolerate a missing attribute (empty
	// list, zero removed) but still require the node to exist.
	Connect(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) (*Connection, error)
	Disconnect(ctx context.Context, targetID uuid.UUID, targetAttr string) (int, error)
	ListConnections(ctx context.Context, targetID uuid.UUID, targetAttr string) ([]*Connection, error)
	// ListNodeConnections returns every edge with the node as source or
	// target, in insertion order.
	ListNodeConnections(ctx context.Context, nodeID uuid.UUID) ([]*Connection, error)

	// Admin operations: scene-agnostic listing, counting, and statistics
	ListNodesWithFilters(ctx context.Context, filters NodeListFilters) ([]*Node, error)
	CountNodesWithFilters(ctx context.Context, filters NodeCountFilters) (int64, error)
	GetNodeStatistics(ctx context.Context, filters NodeCountFilters, options NodeStatisticsOptions) (*NodeStatisticsResult, error)
}

// ArchiveStore defines the interface for scene archive storage backends
type ArchiveStore interface {
	// Save stores an archive under the given key, replacing any previous one
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns a reader for the archive stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the archive stored under key
	Delete(ctx context.Context, key string) error

	// Stat retrieves metadata for the archive stored under key
	Stat(ctx context.Context, key string) (*ArchiveInfo, error)

	// List returns the keys under the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	// NodeCreated is fired when a node is created
	NodeCreated(ctx context.Context, node *Node) error

	// NodeDeleted is fired when a node is deleted
	NodeDeleted(ctx context.Context, nodeID uuid.UUID) error

	// AttributeSet is fired when an attribute is created or written
	AttributeSet(ctx context.Context, attr *Attribute) error

	// Connected is fired when a connection is made
	Connected(ctx context.Context, conn *Connection) error

	// Disconnected is fired when a slot's inbound connections are removed
	Disconnected(ctx context.Context, targetID uuid.UUID, targetAttr string) error

	// SceneImported is fired when a scene is recreated from an archive
	SceneImported(ctx context.Context, scene *Scene) error
}

// ArchiveInfo contains metadata about a stored scene archive
type ArchiveInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
	ETag      string
}
