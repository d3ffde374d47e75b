package simplescene

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// NodeCreated does nothing and returns nil
func (n *NoopEventSink) NodeCreated(ctx context.Context, node *Node) error {
	return nil
}

// NodeDeleted does nothing and returns nil
func (n *NoopEventSink) NodeDeleted(ctx context.Context, nodeID uuid.UUID) error {
	return nil
}

// AttributeSet does nothing and returns nil
func (n *NoopEventSink) AttributeSet(ctx context.Context, attr *Attribute) error {
	return nil
}

// Connected does nothing and returns nil
func (n *NoopEventSink) Connected(ctx context.Context, conn *Connection) error {
	return nil
}

// Disconnected does nothing and returns nil
func (n *NoopEventSink) Disconnected(ctx context.Context, targetID uuid.UUID, targetAttr string) error {
	return nil
}

// SceneImported does nothing and returns nil
func (n *NoopEventSink) SceneImported(ctx context.Context, scene *Scene) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action
// Useful for development and debugging
type LoggingEventSink struct {
	logger Logger
}

// Logger interface for logging events
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger Logger) EventSink {
	return &LoggingEventSink{logger: logger}
}

// NodeCreated logs the node creation event
func (l *LoggingEventSink) NodeCreated(ctx context.Context, node *Node) error {
	l.logger.Infof("Node created: ID=%s, Name=%s, Kind=%s", node.ID, node.Name, node.Kind)
	return nil
}

// NodeDeleted logs the node deletion event
func (l *LoggingEventSink) NodeDeleted(ctx context.Context, nodeID uuid.UUID) error {
	l.logger.Infof("Node deleted: ID=%s", nodeID)
	return nil
}

// AttributeSet logs the attribute write event
func (l *LoggingEventSink) AttributeSet(ctx context.Context, attr *Attribute) error {
	l.logger.Infof("Attribute set: Node=%s, Name=%s, Type=%s", attr.NodeID, attr.Name, attr.Type)
	return nil
}

// Connected logs the connection event
func (l *LoggingEventSink) Connected(ctx context.Context, conn *Connection) error {
	l.logger.Infof("Connected: Source=%s, Target=%s, Attr=%s", conn.SourceID, conn.TargetID, conn.TargetAttr)
	return nil
}

// Disconnected logs the disconnection event
func (l *LoggingEventSink) Disconnected(ctx context.Context, targetID uuid.UUID, targetAttr string) error {
	l.logger.Infof("Disconnected: Target=%s, Attr=%s", targetID, targetAttr)
	return nil
}

// SceneImported logs the scene import event
func (l *LoggingEventSink) SceneImported(ctx context.Context, scene *Scene) error {
	l.logger.Infof("Scene imported: ID=%s, Name=%s", scene.ID, scene.Name)
	return nil
}
