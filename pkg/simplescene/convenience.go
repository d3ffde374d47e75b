package simplescene

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Convenience functions for common scene operations.
// These functions provide simplified interfaces for common use cases
// while keeping the core Service interface clean.

// String returns a pointer to a string value for typed Set calls.
func String(s string) *string {
	return &s
}

// Int returns a pointer to an int64 value for typed Set calls.
func Int(i int64) *int64 {
	return &i
}

// Float returns a pointer to a float64 value for typed Set calls.
func Float(f float64) *float64 {
	return &f
}

// FindOrCreateNode resolves a node by name within a scene, creating it with
// the given kind when it does not exist.
func FindOrCreateNode(ctx context.Context, svc Service, sceneID uuid.UUID, name, kind string) (*Node, error) {
	node, err := svc.GetNodeByName(ctx, sceneID, name)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, ErrNodeNotFound) {
		return nil, err
	}

	return svc.CreateNode(ctx, CreateNodeRequest{
		SceneID: sceneID,
		Name:    name,
		Kind:    kind,
	})
}

// NodesByKind lists the scene's nodes whose stored kind matches.
func NodesByKind(ctx context.Context, svc Service, sceneID uuid.UUID, kind string) ([]*Node, error) {
	nodes, err := svc.ListNodes(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	want := NormalizeKind(kind)
	var matched []*Node
	for _, node := range nodes {
		if node.Kind == want {
			matched = append(matched, node)
		}
	}
	return matched, nil
}

// NodesByResolvedKind lists the scene's nodes that a registry resolves to
// the given kind, so marker-classified nodes are found regardless of their
// stored kind tag.
func NodesByResolvedKind(ctx context.Context, svc Service, registry *KindRegistry, sceneID uuid.UUID, kind string) ([]*Node, error) {
	nodes, err := svc.ListNodes(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	want := NormalizeKind(kind)
	var matched []*Node
	for _, node := range nodes {
		resolved, err := registry.Resolve(ctx, svc, node)
		if err != nil {
			return nil, err
		}
		if resolved == want {
			matched = append(matched, node)
		}
	}
	return matched, nil
}

// CopyAttributes copies all attribute values from one node to another.
// Message attributes are ensured on the target but connections are not
// copied; edges belong to the graph, not to a node's value set.
func CopyAttributes(ctx context.Context, svc Service, sourceID, targetID uuid.UUID) error {
	attrs, err := svc.ListAttributes(ctx, sourceID)
	if err != nil {
		return err
	}

	for _, attr := range attrs {
		switch attr.Type {
		case AttrTypeString:
			if err := svc.SetString(ctx, targetID, attr.Name, &attr.StringValue); err != nil {
				return err
			}
		case AttrTypeInt:
			if err := svc.SetInt(ctx, targetID, attr.Name, &attr.IntValue); err != nil {
				return err
			}
		case AttrTypeFloat:
			if err := svc.SetFloat(ctx, targetID, attr.Name, &attr.FloatValue); err != nil {
				return err
			}
		case AttrTypeMessage:
			if _, err := svc.EnsureMessage(ctx, targetID, attr.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
