package simplescene

import (
	"context"
	"sync"
)

// KindProbe decides whether a node qualifies as a registered kind.
type KindProbe func(ctx context.Context, svc Service, node *Node) (bool, error)

// KindRegistry refines node classification beyond the stored Kind tag.
// Kinds register a probe, usually the presence of a marker attribute, and
// Resolve picks the matching kind for a node. Registration order matters:
// later registrations win when several probes match, so a kind that
// specializes another registers after it.
type KindRegistry struct {
	mu    sync.RWMutex
	kinds []registeredKind
}

type registeredKind struct {
	name  string
	probe KindProbe
}

// NewKindRegistry creates an empty kind registry.
func NewKindRegistry() *KindRegistry {
	return &KindRegistry{}
}

// Register adds a kind with a custom probe.
func (r *KindRegistry) Register(kind string, probe KindProbe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, registeredKind{name: NormalizeKind(kind), probe: probe})
}

// RegisterMarker adds a kind recognized by the presence of a marker
// attribute on the node.
func (r *KindRegistry) RegisterMarker(kind, attr string) {
	r.Register(kind, func(ctx context.Context, svc Service, node *Node) (bool, error) {
		return svc.HasAttribute(ctx, node.ID, attr)
	})
}

// Resolve returns the most recently registered kind whose probe matches the
// node, falling back to the node's stored kind when none match.
func (r *KindRegistry) Resolve(ctx context.Context, svc Service, node *Node) (string, error) {
	r.mu.RLock()
	kinds := make([]registeredKind, len(r.kinds))
	copy(kinds, r.kinds)
	r.mu.RUnlock()

	for i := len(kinds) - 1; i >= 0; i-- {
		ok, err := kinds[i].probe(ctx, svc, node)
		if err != nil {
			return "", err
		}
		if ok {
			return kinds[i].name, nil
		}
	}
	return node.Kind, nil
}

// Kinds returns the registered kind names in registration order.
func (r *KindRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.kinds))
	for i, k := range r.kinds {
		names[i] = k.name
	}
	return names
}
