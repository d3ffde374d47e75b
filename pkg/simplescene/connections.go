package simplescene

import (
	"context"
)

// SingleConnectionAccess treats an attribute as a single-connection slot:
// Get yields the connected source node or nil, Set connects (replacing any
// previous connection) and accepts a node, a node name resolved in the
// target's scene, or an empty value to disconnect. The backing attribute is
// created as a message slot on first connect and survives disconnection.
type SingleConnectionAccess struct {
	svc  Service
	attr string
}

// NewSingleConnectionAccess binds a connection accessor to an attribute name.
func NewSingleConnectionAccess(svc Service, attr string) SingleConnectionAccess {
	return SingleConnectionAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a SingleConnectionAccess) Attr() string { return a.attr }

func (a SingleConnectionAccess) Get(ctx context.Context, node *Node) (*Node, error) {
	return a.svc.GetConnection(ctx, node.ID, a.attr)
}

func (a SingleConnectionAccess) Set(ctx context.Context, node *Node, value ConnValue) error {
	return a.svc.SetConnection(ctx, node.ID, a.attr, value)
}

// Connect links source into the slot, replacing any previous connection.
func (a SingleConnectionAccess) Connect(ctx context.Context, node, source *Node) error {
	return a.Set(ctx, node, ConnNode(source))
}

// ConnectName resolves name within the node's scene and connects the result.
func (a SingleConnectionAccess) ConnectName(ctx context.Context, node *Node, name string) error {
	return a.Set(ctx, node, ConnString(name))
}

// Disconnect removes the slot's inbound connections. The attribute stays.
func (a SingleConnectionAccess) Disconnect(ctx context.Context, node *Node) error {
	return a.Set(ctx, node, ConnValue{})
}

// Bind returns a get/set property pair fixed to one node.
func (a SingleConnectionAccess) Bind(node *Node) *Property[ConnValue] {
	return NewProperty(
		func(ctx context.Context) (ConnValue, error) {
			source, err := a.Get(ctx, node)
			if err != nil || source == nil {
				return ConnValue{}, err
			}
			return ConnNode(source), nil
		},
		func(ctx context.Context, v ConnValue) error { return a.Set(ctx, node, v) },
	)
}

// SingleStringConnectionAccess treats an attribute as a slot that is either
// connected to a node or holds a plain string. Get prefers the connected
// node and falls back to the stored string; "" means unset. Setting a string
// removes any connection first; setting a node clears the stored string
// before connecting; setting an empty value disconnects and resets the
// string.
type SingleStringConnectionAccess struct {
	svc  Service
	attr string
}

// NewSingleStringConnectionAccess binds a string-or-connection accessor to
// an attribute name.
func NewSingleStringConnectionAccess(svc Service, attr string) SingleStringConnectionAccess {
	return SingleStringConnectionAccess{svc: svc, attr: attr}
}

// Attr returns the bound attribute name.
func (a SingleStringConnectionAccess) Attr() string { return a.attr }

func (a SingleStringConnectionAccess) Get(ctx context.Context, node *Node) (ConnValue, error) {
	return a.svc.GetStringConnection(ctx, node.ID, a.attr)
}

func (a SingleStringConnectionAccess) Set(ctx context.Context, node *Node, value ConnValue) error {
	return a.svc.SetStringConnection(ctx, node.ID, a.attr, value)
}

// Connect links source into the slot, clearing the stored string.
func (a SingleStringConnectionAccess) Connect(ctx context.Context, node, source *Node) error {
	return a.Set(ctx, node, ConnNode(source))
}

// SetString stores a literal string, removing any connection first.
func (a SingleStringConnectionAccess) SetString(ctx context.Context, node *Node, value string) error {
	return a.Set(ctx, node, ConnString(value))
}

// Clear disconnects the slot and resets the stored string.
func (a SingleStringConnectionAccess) Clear(ctx context.Context, node *Node) error {
	return a.Set(ctx, node, ConnValue{})
}

// Bind returns a get/set property pair fixed to one node.
func (a SingleStringConnectionAccess) Bind(node *Node) *Property[ConnValue] {
	return NewProperty(
		func(ctx context.Context) (ConnValue, error) { return a.Get(ctx, node) },
		func(ctx context.Context, v ConnValue) error { return a.Set(ctx, node, v) },
	)
}
