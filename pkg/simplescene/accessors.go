package simplescene

import (
	"context"
)

// Attribute accessors bind one attribute name to a service and expose typed
// reads and writes against any node. An accessor holds no state beyond the
// binding: every call round-trips through the store, so edits made elsewhere
// are always visible and nothing is ever cached.
//
// A node kind typically declares its accessors once and reuses them for all
// nodes of that kind:
//
//	type cardKind struct {
//		Mirror simplescene.SingleConnectionAccess
//		Data   simplescene.JSONAccess
//		Side   simplescene.StringAccess
//	}
//
//	kind := cardKind{
//		Mirror: simplescene.NewSingleConnectionAccess(svc, "mirror"),
//		Data:   simplescene.NewJSONAccess(svc, "data"),
//		Side:   simplescene.NewStringAccess(svc, "side"),
//	}

// StringAccess reads and writes a string attribute. A missing attribute
// reads as "".
type StringAccess struct {
	svc  Service
	attr string
}

// NewStringAccess binds a string accessor to an attribute name.
func NewStringAccess(svc Service, attr string) StringAccess {
	return StringAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a StringAccess) Attr() string { return a.attr }

func (a StringAccess) Get(ctx context.Context, node *Node) (string, error) {
	return a.svc.GetString(ctx, node.ID, a.attr)
}

func (a StringAccess) Set(ctx context.Context, node *Node, value string) error {
	return a.svc.SetString(ctx, node.ID, a.attr, &value)
}

// Ensure creates the backing attribute without writing a value.
func (a StringAccess) Ensure(ctx context.Context, node *Node) error {
	return a.svc.SetString(ctx, node.ID, a.attr, nil)
}

// Bind returns a get/set property pair fixed to one node.
func (a StringAccess) Bind(node *Node) *Property[string] {
	return NewProperty(
		func(ctx context.Context) (string, error) { return a.Get(ctx, node) },
		func(ctx context.Context, v string) error { return a.Set(ctx, node, v) },
	)
}

// IntAccess reads and writes an int attribute. A missing attribute reads as
// MissingInt.
type IntAccess struct {
	svc  Service
	attr string
}

// NewIntAccess binds an int accessor to an attribute name.
func NewIntAccess(svc Service, attr string) IntAccess {
	return IntAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a IntAccess) Attr() string { return a.attr }

func (a IntAccess) Get(ctx context.Context, node *Node) (int64, error) {
	return a.svc.GetInt(ctx, node.ID, a.attr)
}

func (a IntAccess) Set(ctx context.Context, node *Node, value int64) error {
	return a.svc.SetInt(ctx, node.ID, a.attr, &value)
}

// Ensure creates the backing attribute without writing a value.
func (a IntAccess) Ensure(ctx context.Context, node *Node) error {
	return a.svc.SetInt(ctx, node.ID, a.attr, nil)
}

// Bind returns a get/set property pair fixed to one node.
func (a IntAccess) Bind(node *Node) *Property[int64] {
	return NewProperty(
		func(ctx context.Context) (int64, error) { return a.Get(ctx, node) },
		func(ctx context.Context, v int64) error { return a.Set(ctx, node, v) },
	)
}

// FloatAccess reads and writes a float attribute. A missing attribute reads
// as MissingFloat.
type FloatAccess struct {
	svc  Service
	attr string
}

// NewFloatAccess binds a float accessor to an attribute name.
func NewFloatAccess(svc Service, attr string) FloatAccess {
	return FloatAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a FloatAccess) Attr() string { return a.attr }

func (a FloatAccess) Get(ctx context.Context, node *Node) (float64, error) {
	return a.svc.GetFloat(ctx, node.ID, a.attr)
}

func (a FloatAccess) Set(ctx context.Context, node *Node, value float64) error {
	return a.svc.SetFloat(ctx, node.ID, a.attr, &value)
}

// Ensure creates the backing attribute without writing a value.
func (a FloatAccess) Ensure(ctx context.Context, node *Node) error {
	return a.svc.SetFloat(ctx, node.ID, a.attr, nil)
}

// Bind returns a get/set property pair fixed to one node.
func (a FloatAccess) Bind(node *Node) *Property[float64] {
	return NewProperty(
		func(ctx context.Context) (float64, error) { return a.Get(ctx, node) },
		func(ctx context.Context, v float64) error { return a.Set(ctx, node, v) },
	)
}
