package simplescene

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/iancoleman/orderedmap"
)

// JSONAccess reads and writes a JSON document attribute with snapshot
// semantics: Get decodes the stored text into an independent ordered
// document, and nothing is written back until Set serializes a document
// again. Key order survives the round trip. A missing attribute reads as an
// empty document.
type JSONAccess struct {
	svc  Service
	attr string
}

// NewJSONAccess binds a JSON accessor to an attribute name.
func NewJSONAccess(svc Service, attr string) JSONAccess {
	return JSONAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a JSONAccess) Attr() string { return a.attr }

func (a JSONAccess) Get(ctx context.Context, node *Node) (*orderedmap.OrderedMap, error) {
	return a.svc.GetJSON(ctx, node.ID, a.attr)
}

func (a JSONAccess) Set(ctx context.Context, node *Node, doc *orderedmap.OrderedMap) error {
	return a.svc.SetJSON(ctx, node.ID, a.attr, doc)
}

// Bind returns a get/set property pair fixed to one node.
func (a JSONAccess) Bind(node *Node) *Property[*orderedmap.OrderedMap] {
	return NewProperty(
		func(ctx context.Context) (*orderedmap.OrderedMap, error) { return a.Get(ctx, node) },
		func(ctx context.Context, doc *orderedmap.OrderedMap) error { return a.Set(ctx, node, doc) },
	)
}

// JSONDirectAccess reads a JSON document attribute through a fixed defaults
// overlay: Get yields a proxy over defaults with stored keys layered on top,
// so consumers always see the full key set even on nodes that were written
// before newer defaults were introduced.
//
// Mutation goes through JSONProxy.Set / JSONProxy.Delete, which persist the
// entire merged document. There is no write-through on nested values:
// mutating a nested map obtained from the proxy changes only the in-memory
// view.
type JSONDirectAccess struct {
	svc      Service
	attr     string
	defaults *orderedmap.OrderedMap
}

// NewJSONDirectAccess binds a live JSON accessor to an attribute name with
// the given defaults. The defaults document is never mutated.
func NewJSONDirectAccess(svc Service, attr string, defaults *orderedmap.OrderedMap) JSONDirectAccess {
	return JSONDirectAccess{svc: svc, attr: attr, defaults: defaults}
}

// Attr returns the bound attribute name.
func (a JSONDirectAccess) Attr() string { return a.attr }

func (a JSONDirectAccess) Get(ctx context.Context, node *Node) (*JSONProxy, error) {
	stored, err := a.svc.GetJSON(ctx, node.ID, a.attr)
	if err != nil {
		return nil, err
	}

	view, err := cloneDocument(a.defaults)
	if err != nil {
		return nil, &AttributeError{NodeID: node.ID, Attr: a.attr, Op: "get_json_direct", Err: err}
	}
	for _, key := range stored.Keys() {
		value, _ := stored.Get(key)
		view.Set(key, value)
	}

	return &JSONProxy{
		svc:    a.svc,
		nodeID: node.ID,
		attr:   a.attr,
		doc:    view,
	}, nil
}

// JSONProxy is a node-bound view of a JSON document attribute merged over
// accessor defaults. Top-level writes persist immediately.
type JSONProxy struct {
	svc    Service
	nodeID uuid.UUID
	attr   string
	doc    *orderedmap.OrderedMap
}

// Get returns the value of a top-level key in the merged view.
func (p *JSONProxy) Get(key string) (interface{}, bool) {
	return p.doc.Get(key)
}

// Keys returns the merged view's top-level keys in order.
func (p *JSONProxy) Keys() []string {
	return p.doc.Keys()
}

// Map returns the merged view. Mutating it does not persist anything; use
// Set for writes that should reach the store.
func (p *JSONProxy) Map() *orderedmap.OrderedMap {
	return p.doc
}

// Set writes a top-level key and immediately persists the whole merged
// document to the attribute.
func (p *JSONProxy) Set(ctx context.Context, key string, value interface{}) error {
	p.doc.Set(key, value)
	return p.svc.SetJSON(ctx, p.nodeID, p.attr, p.doc)
}

// Delete removes a top-level key and persists the merged document. Deleting
// an absent key is a no-op.
func (p *JSONProxy) Delete(ctx context.Context, key string) error {
	if _, ok := p.doc.Get(key); !ok {
		return nil
	}
	p.doc.Delete(key)
	return p.svc.SetJSON(ctx, p.nodeID, p.attr, p.doc)
}

// cloneDocument deep-copies a document through a serialization round trip,
// keeping nested values independent of the source.
func cloneDocument(doc *orderedmap.OrderedMap) (*orderedmap.OrderedMap, error) {
	out := orderedmap.New()
	if doc == nil {
		return out, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}
