package simplescene

import (
	"context"

	"github.com/google/uuid"
)

// Hook system allows extending scene behavior without modifying core code.
// Hooks are called at specific points in the node and attribute lifecycle.
// The service runs them when configured via WithHooks: Before* hooks may
// veto an operation by returning an error, After* hooks run once the
// mutation is persisted.

// Hooks defines all available lifecycle hooks
type Hooks struct {
	// Node lifecycle hooks
	BeforeNodeCreate []BeforeNodeCreateHook
	AfterNodeCreate  []AfterNodeCreateHook
	BeforeNodeDelete []BeforeNodeDeleteHook
	AfterNodeDelete  []AfterNodeDeleteHook

	// Attribute hooks
	BeforeAttributeSet []BeforeAttributeSetHook
	AfterAttributeSet  []AfterAttributeSetHook

	// Connection hooks
	BeforeConnect    []BeforeConnectHook
	AfterConnect     []AfterConnectHook
	BeforeDisconnect []BeforeDisconnectHook

	// Error hooks
	OnError []ErrorHook
}

// Hook context carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// Node Lifecycle Hooks

// BeforeNodeCreateHook is called before creating a node
type BeforeNodeCreateHook func(hctx *HookContext, req *CreateNodeRequest) error

// AfterNodeCreateHook is called after a node is created
type AfterNodeCreateHook func(hctx *HookContext, node *Node) error

// BeforeNodeDeleteHook is called before deleting a node
type BeforeNodeDeleteHook func(hctx *HookContext, nodeID uuid.UUID) error

// AfterNodeDeleteHook is called after a node is deleted
type AfterNodeDeleteHook func(hctx *HookContext, nodeID uuid.UUID) error

// Attribute Hooks

// BeforeAttributeSetHook is called before an attribute value is persisted.
// The hook may adjust the value fields in place.
type BeforeAttributeSetHook func(hctx *HookContext, attr *Attribute) error

// AfterAttributeSetHook is called after an attribute value is persisted
type AfterAttributeSetHook func(hctx *HookContext, attr *Attribute) error

// Connection Hooks

// BeforeConnectHook is called before a connection is made
type BeforeConnectHook func(hctx *HookContext, sourceID, targetID uuid.UUID, targetAttr string) error

// AfterConnectHook is called after a connection is made
type AfterConnectHook func(hctx *HookContext, conn *Connection) error

// BeforeDisconnectHook is called before a slot's inbound connections are removed
type BeforeDisconnectHook func(hctx *HookContext, targetID uuid.UUID, targetAttr string) error

// Error Hooks

// ErrorHook is called when an error occurs
type ErrorHook func(hctx *HookContext, operation string, err error)

// Hook execution helpers

// executeBeforeNodeCreate runs all BeforeNodeCreate hooks
func (h *Hooks) executeBeforeNodeCreate(ctx context.Context, req *CreateNodeRequest) error {
	if len(h.BeforeNodeCreate) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeNodeCreate {
		if err := hook(hctx, req); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeAfterNodeCreate runs all AfterNodeCreate hooks
func (h *Hooks) executeAfterNodeCreate(ctx context.Context, node *Node) error {
	if len(h.AfterNodeCreate) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterNodeCreate {
		if err := hook(hctx, node); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeBeforeNodeDelete runs all BeforeNodeDelete hooks
func (h *Hooks) executeBeforeNodeDelete(ctx context.Context, nodeID uuid.UUID) error {
	if len(h.BeforeNodeDelete) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeNodeDelete {
		if err := hook(hctx, nodeID); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeAfterNodeDelete runs all AfterNodeDelete hooks
func (h *Hooks) executeAfterNodeDelete(ctx context.Context, nodeID uuid.UUID) error {
	if len(h.AfterNodeDelete) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterNodeDelete {
		if err := hook(hctx, nodeID); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeBeforeAttributeSet runs all BeforeAttributeSet hooks
func (h *Hooks) executeBeforeAttributeSet(ctx context.Context, attr *Attribute) error {
	if len(h.BeforeAttributeSet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeAttributeSet {
		if err := hook(hctx, attr); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeAfterAttributeSet runs all AfterAttributeSet hooks
func (h *Hooks) executeAfterAttributeSet(ctx context.Context, attr *Attribute) error {
	if len(h.AfterAttributeSet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterAttributeSet {
		if err := hook(hctx, attr); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeBeforeConnect runs all BeforeConnect hooks
func (h *Hooks) executeBeforeConnect(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) error {
	if len(h.BeforeConnect) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeConnect {
		if err := hook(hctx, sourceID, targetID, targetAttr); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeAfterConnect runs all AfterConnect hooks
func (h *Hooks) executeAfterConnect(ctx context.Context, conn *Connection) error {
	if len(h.AfterConnect) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterConnect {
		if err := hook(hctx, conn); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeBeforeDisconnect runs all BeforeDisconnect hooks
func (h *Hooks) executeBeforeDisconnect(ctx context.Context, targetID uuid.UUID, targetAttr string) error {
	if len(h.BeforeDisconnect) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeDisconnect {
		if err := hook(hctx, targetID, targetAttr); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// executeOnError runs all OnError hooks
func (h *Hooks) executeOnError(ctx context.Context, operation string, err error) {
	if len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}

// Common hook implementations (examples)

// LoggingHook logs all operations
func LoggingHook(logger func(format string, args ...interface{})) *Hooks {
	return &Hooks{
		AfterNodeCreate: []AfterNodeCreateHook{
			func(hctx *HookContext, node *Node) error {
				logger("Node created: %s (%s)", node.Name, node.ID)
				return nil
			},
		},
		AfterAttributeSet: []AfterAttributeSetHook{
			func(hctx *HookContext, attr *Attribute) error {
				logger("Attribute set: %s on node %s", attr.Name, attr.NodeID)
				return nil
			},
		},
		AfterConnect: []AfterConnectHook{
			func(hctx *HookContext, conn *Connection) error {
				logger("Connected: %s -> %s.%s", conn.SourceID, conn.TargetID, conn.TargetAttr)
				return nil
			},
		},
		OnError: []ErrorHook{
			func(hctx *HookContext, operation string, err error) {
				logger("Error in %s: %v", operation, err)
			},
		},
	}
}

// ValidationHook adds custom validation for node creation
func ValidationHook(validator func(*CreateNodeRequest) error) BeforeNodeCreateHook {
	return func(hctx *HookContext, req *CreateNodeRequest) error {
		return validator(req)
	}
}

// MetricsHook tracks metrics
func MetricsHook(metrics interface {
	IncrementCounter(name string)
}) *Hooks {
	return &Hooks{
		AfterNodeCreate: []AfterNodeCreateHook{
			func(hctx *HookContext, node *Node) error {
				metrics.IncrementCounter("node.created")
				return nil
			},
		},
		AfterNodeDelete: []AfterNodeDeleteHook{
			func(hctx *HookContext, nodeID uuid.UUID) error {
				metrics.IncrementCounter("node.deleted")
				return nil
			},
		},
		AfterAttributeSet: []AfterAttributeSetHook{
			func(hctx *HookContext, attr *Attribute) error {
				metrics.IncrementCounter("attribute.set")
				return nil
			},
		},
		AfterConnect: []AfterConnectHook{
			func(hctx *HookContext, conn *Connection) error {
				metrics.IncrementCounter("connection.made")
				return nil
			},
		},
	}
}
