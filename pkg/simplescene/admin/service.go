package admin

import (
	"context"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// AdminService defines the interface for administrative node operations.
// These operations span all scenes and are intended for operational,
// monitoring, and bulk processing use cases.
//
// IMPORTANT: Endpoints using this service should be protected with appropriate
// authentication and authorization middleware to ensure only authorized
// administrators can access these operations.
type AdminService interface {
	// ListAllNodes returns a paginated list of nodes with optional filtering.
	// Unlike the regular ListNodes operation, this is not limited to a single scene.
	ListAllNodes(ctx context.Context, req ListNodesRequest) (*ListNodesResponse, error)

	// CountNodes returns the count of nodes matching the given filters.
	// This is useful for pagination and monitoring purposes.
	CountNodes(ctx context.Context, req CountRequest) (*CountResponse, error)

	// GetStatistics returns aggregated statistics about nodes.
	// This provides breakdown by kind, scene, attribute type, etc.
	GetStatistics(ctx context.Context, req StatisticsRequest) (*StatisticsResponse, error)
}

// New creates a new AdminService instance that uses the provided repository.
func New(repo simplescene.Repository) AdminService {
	return &adminService{
		repo: repo,
	}
}
