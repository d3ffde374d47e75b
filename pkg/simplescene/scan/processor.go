package scan

import (
	"context"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// NodeProcessor processes individual nodes.
// External apps implement this to define custom processing logic.
//
// Example implementations:
//   - Event emitter (sends node events to message queue)
//   - Renamer (applies naming conventions in bulk)
//   - Validator (validates node attribute integrity)
//   - Reporter (generates reports/exports)
type NodeProcessor interface {
	// Process is called for each node found during scan.
	// Return error to mark this node as failed (scan continues with next node).
	Process(ctx context.Context, node *simplescene.Node) error
}
