package simplescene

import (
	"context"

	"github.com/google/uuid"
	"github.com/iancoleman/orderedmap"
	"github.com/tidwall/gjson"
)

// Service is the main interface for scene-graph operations.
//
// Typed value reads (GetString, GetInt, GetFloat, GetJSON, GetConnection,
// GetStringConnection) treat a missing attribute as "never assigned" and
// return the type's missing-value default instead of an error. Typed writes
// create the backing attribute on first use; passing a nil value creates the
// attribute without writing it. A missing node is always an error.
type Service interface {
	// Scene operations
	CreateScene(ctx context.Context, req CreateSceneRequest) (*Scene, error)
	GetScene(ctx context.Context, id uuid.UUID) (*Scene, error)
	GetSceneByName(ctx context.Context, name string) (*Scene, error)
	ListScenes(ctx context.Context) ([]*Scene, error)
	DeleteScene(ctx context.Context, id uuid.UUID) error

	// Node operations
	CreateNode(ctx context.Context, req CreateNodeRequest) (*Node, error)
	GetNode(ctx context.Context, id uuid.UUID) (*Node, error)
	GetNodeByName(ctx context.Context, sceneID uuid.UUID, name string) (*Node, error)
	ListNodes(ctx context.Context, sceneID uuid.UUID) ([]*Node, error)
	UpdateNode(ctx context.Context, req UpdateNodeRequest) (*Node, error)
	DeleteNode(ctx context.Context, id uuid.UUID) error

	// Attribute operations
	HasAttribute(ctx context.Context, nodeID uuid.UUID, name string) (bool, error)
	GetAttribute(ctx context.Context, nodeID uuid.UUID, name string) (*Attribute, error)
	ListAttributes(ctx context.Context, nodeID uuid.UUID) ([]*Attribute, error)
	// EnsureAttribute creates the attribute with the given type when it does
	// not exist. An existing attribute is returned as is, even when its
	// stored type differs.
	EnsureAttribute(ctx context.Context, nodeID uuid.UUID, name string, typ AttrType) (*Attribute, error)
	// EnsureMessage creates a valueless message attribute to serve as a
	// connection anchor.
	EnsureMessage(ctx context.Context, nodeID uuid.UUID, name string) (*Attribute, error)
	DeleteAttribute(ctx context.Context, nodeID uuid.UUID, name string) error

	// Typed value operations
	GetString(ctx context.Context, nodeID uuid.UUID, attr string) (string, error)
	SetString(ctx context.Context, nodeID uuid.UUID, attr string, value *string) error
	GetInt(ctx context.Context, nodeID uuid.UUID, attr string) (int64, error)
	SetInt(ctx context.Context, nodeID uuid.UUID, attr string, value *int64) error
	GetFloat(ctx context.Context, nodeID uuid.UUID, attr string) (float64, error)
	SetFloat(ctx context.Context, nodeID uuid.UUID, attr string, value *float64) error

	// JSON document operations
	//
	// Documents are stored as serialized text in string attributes. GetJSON
	// returns an independent snapshot preserving key order; a missing or
	// empty attribute reads as an empty document. The path operations
	// address nested values with gjson/sjson path syntax without a full
	// decode round trip.
	GetJSON(ctx context.Context, nodeID uuid.UUID, attr string) (*orderedmap.OrderedMap, error)
	SetJSON(ctx context.Context, nodeID uuid.UUID, attr string, doc *orderedmap.OrderedMap) error
	GetJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string) (gjson.Result, error)
	SetJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string, value interface{}) error
	DeleteJSONPath(ctx context.Context, nodeID uuid.UUID, attr, path string) error

	// Connection operations
	//
	// GetConnection returns the first inbound connection's source node, nil
	// when the slot is missing or unconnected. SetConnection with a node or
	// resolvable name replaces any existing inbound connections; with an
	// empty value it disconnects. Disconnect removes all inbound
	// connections and leaves the attribute in place.
	GetConnection(ctx context.Context, nodeID uuid.UUID, attr string) (*Node, error)
	SetConnection(ctx context.Context, nodeID uuid.UUID, attr string, value ConnValue) error
	Disconnect(ctx context.Context, nodeID uuid.UUID, attr string) error
	Connections(ctx context.Context, nodeID uuid.UUID, attr string) ([]*Connection, error)

	// String-or-connection operations over a single slot that prefers a
	// connected node and falls back to a stored string.
	GetStringConnection(ctx context.Context, nodeID uuid.UUID, attr string) (ConnValue, error)
	SetStringConnection(ctx context.Context, nodeID uuid.UUID, attr string, value ConnValue) error

	// Archive operations
	ExportScene(ctx context.Context, req ExportSceneRequest) (*ArchiveInfo, error)
	ImportScene(ctx context.Context, req ImportSceneRequest) (*Scene, error)

	// Archive store operations
	RegisterArchive(name string, store ArchiveStore)
	GetArchive(name string) (ArchiveStore, error)
}
