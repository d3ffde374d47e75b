package simplescene

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SceneDocumentVersion is the current archive document format version.
const SceneDocumentVersion = 1

// SceneDocument is the serialized form of a scene: nodes in creation order
// with their attributes, and connections referenced by node name so the
// document stays valid across stores that assign fresh IDs on import.
type SceneDocument struct {
	Version     int                  `json:"version"`
	Scene       string               `json:"scene"`
	ExportedAt  time.Time            `json:"exported_at"`
	Nodes       []NodeDocument       `json:"nodes"`
	Connections []ConnectionDocument `json:"connections,omitempty"`
}

// NodeDocument is the serialized form of a node
type NodeDocument struct {
	Name       string              `json:"name"`
	Kind       string              `json:"kind,omitempty"`
	Attributes []AttributeDocument `json:"attributes,omitempty"`
}

// AttributeDocument is the serialized form of an attribute
type AttributeDocument struct {
	Name        string   `json:"name"`
	Type        AttrType `json:"type"`
	StringValue string   `json:"string_value,omitempty"`
	IntValue    int64    `json:"int_value,omitempty"`
	FloatValue  float64  `json:"float_value,omitempty"`
}

// ConnectionDocument is the serialized form of a connection, by node name
type ConnectionDocument struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	TargetAttr string `json:"target_attr"`
}

// Encode writes the document as indented JSON.
func (d *SceneDocument) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// DecodeSceneDocument reads and validates a JSON scene document.
func DecodeSceneDocument(r io.Reader) (*SceneDocument, error) {
	var doc SceneDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Version != SceneDocumentVersion {
		return nil, fmt.Errorf("unsupported scene document version %d", doc.Version)
	}
	return &doc, nil
}
