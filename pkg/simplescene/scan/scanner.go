package scan

import (
	"context"
	"fmt"

	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
)

// Scanner queries nodes and processes them with the provided processor.
type Scanner struct {
	adminSvc admin.AdminService
}

// New creates a new Scanner instance.
func New(adminSvc admin.AdminService) *Scanner {
	return &Scanner{adminSvc: adminSvc}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// Filters specifies which nodes to process
	Filters admin.NodeFilters

	// Processor defines the processing logic (required unless DryRun is true)
	Processor NodeProcessor

	// BatchSize controls how many nodes to query at once (default: 100)
	BatchSize int

	// DryRun if true, doesn't process nodes, just reports what would be processed
	DryRun bool

	// OnProgress is called after each batch is processed (optional)
	OnProgress func(processed, total int64)
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	// TotalFound is the total number of nodes found matching the filters
	TotalFound int64

	// TotalProcessed is the number of nodes successfully processed
	TotalProcessed int64

	// TotalFailed is the number of nodes that failed processing
	TotalFailed int64

	// FailedIDs contains the IDs of nodes that failed processing
	FailedIDs []string
}

// Scan queries nodes matching the filters and processes each one with the provided processor.
// Processing happens in batches for efficiency. If a node fails processing, the error is
// recorded but scanning continues with the next node.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{}

	// Validate options
	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}

	// Set defaults
	if opts.BatchSize == 0 {
		opts.BatchSize = 100
	}

	offset := 0
	for {
		// Query batch of nodes
		opts.Filters.Limit = &opts.BatchSize
		opts.Filters.Offset = &offset

		resp, err := s.adminSvc.ListAllNodes(ctx, admin.ListNodesRequest{
			Filters: opts.Filters,
		})
		if err != nil {
			return result, fmt.Errorf("failed to list nodes: %w", err)
		}

		if len(resp.Nodes) == 0 {
			break
		}

		result.TotalFound += int64(len(resp.Nodes))

		// Process each node in the batch
		for _, node := range resp.Nodes {
			if opts.DryRun {
				fmt.Printf("[DRY-RUN] Would process: %s (scene=%s, kind=%s, name=%s)\n",
					node.ID, node.SceneID, node.Kind, node.Name)
				result.TotalProcessed++
				continue
			}

			// Call external processor
			if err := opts.Processor.Process(ctx, node); err != nil {
				result.TotalFailed++
				result.FailedIDs = append(result.FailedIDs, node.ID.String())
				fmt.Printf("[ERROR] Failed to process %s: %v\n", node.ID, err)
				continue
			}

			result.TotalProcessed++
		}

		// Report progress if callback provided
		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}

		// Check if there are more nodes
		if !resp.HasMore {
			break
		}

		offset += opts.BatchSize
	}

	return result, nil
}

// ForEach is a convenience method that processes each node with a callback function.
// This is useful for simple inline processing without creating a separate processor type.
//
// Example:
//
//	scanner.ForEach(ctx, filters, func(ctx context.Context, node *simplescene.Node) error {
//	    fmt.Printf("Processing %s\n", node.Name)
//	    return doSomething(node)
//	})
func (s *Scanner) ForEach(ctx context.Context, filters admin.NodeFilters, fn func(context.Context, *simplescene.Node) error) (*ScanResult, error) {
	processor := &funcProcessor{fn: fn}
	return s.Scan(ctx, ScanOptions{
		Filters:   filters,
		Processor: processor,
	})
}

// funcProcessor adapts a function to the NodeProcessor interface.
type funcProcessor struct {
	fn func(context.Context, *simplescene.Node) error
}

func (p *funcProcessor) Process(ctx context.Context, node *simplescene.Node) error {
	return p.fn(ctx, node)
}
