package simplescene

import (
	"context"

	"github.com/google/uuid"
)

// Connection operations.
//
// A slot holds at most one meaningful inbound connection; reads take the
// first in insertion order when the host store carries several. Writes are
// replacing: connecting over an occupied slot removes the previous inbound
// edges first. Disconnecting never deletes the attribute.

func (s *service) GetConnection(ctx context.Context, nodeID uuid.UUID, attr string) (*Node, error) {
	conns, err := s.repository.ListConnections(ctx, nodeID, attr)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, nil
	}
	return s.repository.GetNode(ctx, conns[0].SourceID)
}

func (s *service) SetConnection(ctx context.Context, nodeID uuid.UUID, attr string, value ConnValue) error {
	if value.IsEmpty() {
		return s.Disconnect(ctx, nodeID, attr)
	}

	source, err := s.resolveSource(ctx, nodeID, value)
	if err != nil {
		return err
	}
	if _, err := s.EnsureMessage(ctx, nodeID, attr); err != nil {
		return err
	}
	return s.connect(ctx, source.ID, nodeID, attr)
}

func (s *service) Disconnect(ctx context.Context, nodeID uuid.UUID, attr string) error {
	if s.hooks != nil {
		if err := s.hooks.executeBeforeDisconnect(ctx, nodeID, attr); err != nil {
			return &ConnectionError{TargetID: nodeID, TargetAttr: attr, Op: "disconnect", Err: err}
		}
	}

	removed, err := s.repository.Disconnect(ctx, nodeID, attr)
	if err != nil {
		s.fireError(ctx, "disconnect", err)
		return &ConnectionError{
			TargetID:   nodeID,
			TargetAttr: attr,
			Op:         "disconnect",
			Err:        err,
		}
	}

	// Fire event
	if removed > 0 && s.eventSink != nil {
		if err := s.eventSink.Disconnected(ctx, nodeID, attr); err != nil {
			// Log error but don't fail the operation
		}
	}

	return nil
}

func (s *service) Connections(ctx context.Context, nodeID uuid.UUID, attr string) ([]*Connection, error) {
	return s.repository.ListConnections(ctx, nodeID, attr)
}

// String-or-connection operations

func (s *service) GetStringConnection(ctx context.Context, nodeID uuid.UUID, attr string) (ConnValue, error) {
	conns, err := s.repository.ListConnections(ctx, nodeID, attr)
	if err != nil {
		return ConnValue{}, err
	}
	if len(conns) > 0 {
		source, err := s.repository.GetNode(ctx, conns[0].SourceID)
		if err != nil {
			return ConnValue{}, err
		}
		return ConnNode(source), nil
	}

	str, err := s.GetString(ctx, nodeID, attr)
	if err != nil {
		return ConnValue{}, err
	}
	return ConnString(str), nil
}

func (s *service) SetStringConnection(ctx context.Context, nodeID uuid.UUID, attr string, value ConnValue) error {
	switch {
	case value.IsNode():
		// The slot is a string attribute; reset it before the edge goes in
		// so a later disconnect reads back as unset.
		empty := ""
		if err := s.SetString(ctx, nodeID, attr, &empty); err != nil {
			return err
		}
		return s.connect(ctx, value.Node.ID, nodeID, attr)

	case value.IsString():
		// An inbound connection shadows the stored string; remove it first.
		if err := s.Disconnect(ctx, nodeID, attr); err != nil {
			return err
		}
		return s.SetString(ctx, nodeID, attr, &value.Str)

	default:
		has, err := s.repository.HasAttribute(ctx, nodeID, attr)
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		if err := s.Disconnect(ctx, nodeID, attr); err != nil {
			return err
		}
		empty := ""
		return s.SetString(ctx, nodeID, attr, &empty)
	}
}

// resolveSource turns a ConnValue into a source node. String values resolve
// as node names within the target node's scene.
func (s *service) resolveSource(ctx context.Context, targetID uuid.UUID, value ConnValue) (*Node, error) {
	if value.IsNode() {
		return value.Node, nil
	}

	target, err := s.repository.GetNode(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.repository.GetNodeByName(ctx, target.SceneID, value.Str)
}

// connect makes source the sole inbound connection of the slot. Connecting
// an already-connected identical edge is a no-op.
func (s *service) connect(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) error {
	existing, err := s.repository.ListConnections(ctx, targetID, targetAttr)
	if err != nil {
		return err
	}
	if len(existing) == 1 && existing[0].SourceID == sourceID {
		return nil
	}

	if s.hooks != nil {
		if err := s.hooks.executeBeforeConnect(ctx, sourceID, targetID, targetAttr); err != nil {
			return &ConnectionError{TargetID: targetID, TargetAttr: targetAttr, Op: "connect", Err: err}
		}
	}

	if len(existing) > 0 {
		if _, err := s.repository.Disconnect(ctx, targetID, targetAttr); err != nil {
			return &ConnectionError{TargetID: targetID, TargetAttr: targetAttr, Op: "connect", Err: err}
		}
	}

	conn, err := s.repository.Connect(ctx, sourceID, targetID, targetAttr)
	if err != nil {
		s.fireError(ctx, "connect", err)
		return &ConnectionError{
			TargetID:   targetID,
			TargetAttr: targetAttr,
			Op:         "connect",
			Err:        err,
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.Connected(ctx, conn); err != nil {
			// Log error but don't fail the operation
		}
	}

	if s.hooks != nil {
		if err := s.hooks.executeAfterConnect(ctx, conn); err != nil {
			return &ConnectionError{TargetID: targetID, TargetAttr: targetAttr, Op: "connect", Err: err}
		}
	}

	return nil
}
