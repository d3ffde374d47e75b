package simplescene

import (
	"time"

	"github.com/google/uuid"
)

// AttrType is the domain type for attribute storage types.
type AttrType string

// Attribute type constants (typed).
const (
	AttrTypeString  AttrType = "string"
	AttrTypeInt     AttrType = "int"
	AttrTypeFloat   AttrType = "float"
	AttrTypeMessage AttrType = "message"
)

// Missing-value defaults returned by typed reads when the attribute does not
// exist. The magic numbers are deliberate: they are far outside any value the
// accessors are used for, so "never assigned" is distinguishable from zero.
const (
	MissingInt   int64   = -666
	MissingFloat float64 = -666.666
)

// Valid reports whether t is a known attribute type.
func (t AttrType) Valid() bool {
	switch t {
	case AttrTypeString, AttrTypeInt, AttrTypeFloat, AttrTypeMessage:
		return true
	}
	return false
}

// Scene is a named container of nodes. Node names are unique within a scene,
// and string-based node resolution is always scoped to one scene.
type Scene struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Node represents a scene-graph node. Kind is a free-form tag recorded at
// creation; refined classification happens through KindRegistry probes.
type Node struct {
	ID        uuid.UUID `json:"id"`
	SceneID   uuid.UUID `json:"scene_id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attribute is a named typed slot on a node. Exactly one of the value fields
// is meaningful, selected by Type; message attributes carry no value and
// exist only as connection anchors. JSON documents are stored as string
// attributes holding serialized text.
type Attribute struct {
	NodeID      uuid.UUID `json:"node_id"`
	Name        string    `json:"name"`
	Type        AttrType  `json:"type"`
	StringValue string    `json:"string_value,omitempty"`
	IntValue    int64     `json:"int_value,omitempty"`
	FloatValue  float64   `json:"float_value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Connection is a directed edge from a source node to a (target node, target
// attribute) slot. Seq preserves insertion order; reads that want "the"
// connection of a slot take the lowest Seq.
type Connection struct {
	ID         uuid.UUID `json:"id"`
	SourceID   uuid.UUID `json:"source_id"`
	TargetID   uuid.UUID `json:"target_id"`
	TargetAttr string    `json:"target_attr"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConnValue is the value of a connection-backed slot: a node, a plain string,
// or empty. The zero value is empty. Discrimination: a non-nil Node is the
// node variant; otherwise a non-empty Str is the string variant.
//
// On write, the node variant connects, the string variant either resolves a
// node name (single-connection slots) or stores a literal (string-or-
// connection slots), and empty disconnects. On read it carries whichever of
// the two a slot currently holds.
type ConnValue struct {
	Node *Node
	Str  string
}

// ConnNode returns the node variant of a ConnValue.
func ConnNode(n *Node) ConnValue {
	return ConnValue{Node: n}
}

// ConnString returns the string variant of a ConnValue.
func ConnString(s string) ConnValue {
	return ConnValue{Str: s}
}

// IsNode reports whether v holds a node.
func (v ConnValue) IsNode() bool { return v.Node != nil }

// IsString reports whether v holds a non-empty string and no node.
func (v ConnValue) IsString() bool { return v.Node == nil && v.Str != "" }

// IsEmpty reports whether v holds neither a node nor a string.
func (v ConnValue) IsEmpty() bool { return v.Node == nil && v.Str == "" }

// NodeListFilters defines filtering options for listing nodes (admin operations)
type NodeListFilters struct {
	SceneID       *uuid.UUID
	SceneIDs      []uuid.UUID
	Kind          *string
	Kinds         []string
	NamePrefix    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	Limit         *int
	Offset        *int
	SortBy        *string
	SortOrder     *string
}

// NodeCountFilters defines filtering options for counting nodes
type NodeCountFilters struct {
	SceneID       *uuid.UUID
	SceneIDs      []uuid.UUID
	Kind          *string
	Kinds         []string
	NamePrefix    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

// NodeStatisticsOptions defines what statistics to include
type NodeStatisticsOptions struct {
	IncludeKindBreakdown     bool
	IncludeSceneBreakdown    bool
	IncludeAttrTypeBreakdown bool
	IncludeConnectionCount   bool
	IncludeTimeRange         bool
}

// NodeStatisticsResult contains aggregated statistics about nodes
type NodeStatisticsResult struct {
	TotalCount      int64
	ByKind          map[string]int64
	ByScene         map[string]int64
	ByAttrType      map[string]int64
	ConnectionCount int64
	OldestNode      *time.Time
	NewestNode      *time.Time
}
