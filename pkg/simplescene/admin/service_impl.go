package admin

import (
	"context"
	"time"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// adminService implements the AdminService interface
type adminService struct {
	repo simplescene.Repository
}

// Ensure adminService implements AdminService
var _ AdminService = (*adminService)(nil)

// ListAllNodes returns a paginated list of nodes with optional filtering
func (s *adminService) ListAllNodes(ctx context.Context, req ListNodesRequest) (*ListNodesResponse, error) {
	// Convert admin filters to repository filters
	repoFilters := s.convertToRepoListFilters(req.Filters)

	// Get nodes from repository
	nodes, err := s.repo.ListNodesWithFilters(ctx, repoFilters)
	if err != nil {
		return nil, err
	}

	// Determine pagination details
	limit := 100 // default
	if repoFilters.Limit != nil {
		limit = *repoFilters.Limit
	}
	offset := 0
	if repoFilters.Offset != nil {
		offset = *repoFilters.Offset
	}

	// Check if there are more results
	hasMore := len(nodes) == limit

	response := &ListNodesResponse{
		Nodes:   nodes,
		Limit:   limit,
		Offset:  offset,
		HasMore: hasMore,
	}

	return response, nil
}

// CountNodes returns the count of nodes matching the given filters
func (s *adminService) CountNodes(ctx context.Context, req CountRequest) (*CountResponse, error) {
	// Convert admin filters to repository filters
	repoFilters := s.convertToRepoCountFilters(req.Filters)

	// Get count from repository
	count, err := s.repo.CountNodesWithFilters(ctx, repoFilters)
	if err != nil {
		return nil, err
	}

	response := &CountResponse{
		Count: count,
	}

	return response, nil
}

// GetStatistics returns aggregated statistics about nodes
func (s *adminService) GetStatistics(ctx context.Context, req StatisticsRequest) (*StatisticsResponse, error) {
	// Convert admin filters to repository filters
	repoFilters := s.convertToRepoCountFilters(req.Filters)

	// Convert admin options to repository options
	repoOptions := simplescene.NodeStatisticsOptions{
		IncludeKindBreakdown:     req.Options.IncludeKindBreakdown,
		IncludeSceneBreakdown:    req.Options.IncludeSceneBreakdown,
		IncludeAttrTypeBreakdown: req.Options.IncludeAttrTypeBreakdown,
		IncludeConnectionCount:   req.Options.IncludeConnectionCount,
		IncludeTimeRange:         req.Options.IncludeTimeRange,
	}

	// Get statistics from repository
	repoStats, err := s.repo.GetNodeStatistics(ctx, repoFilters, repoOptions)
	if err != nil {
		return nil, err
	}

	// Convert repository statistics to admin statistics
	stats := NodeStatistics{
		TotalCount:      repoStats.TotalCount,
		ByKind:          repoStats.ByKind,
		ByScene:         repoStats.ByScene,
		ByAttrType:      repoStats.ByAttrType,
		ConnectionCount: repoStats.ConnectionCount,
		OldestNode:      repoStats.OldestNode,
		NewestNode:      repoStats.NewestNode,
	}

	response := &StatisticsResponse{
		Statistics: stats,
		ComputedAt: time.Now(),
	}

	return response, nil
}

// convertToRepoListFilters converts admin NodeFilters to repository NodeListFilters
func (s *adminService) convertToRepoListFilters(filters NodeFilters) simplescene.NodeListFilters {
	return simplescene.NodeListFilters{
		SceneID:       filters.SceneID,
		SceneIDs:      filters.SceneIDs,
		Kind:          filters.Kind,
		Kinds:         filters.Kinds,
		NamePrefix:    filters.NamePrefix,
		CreatedAfter:  filters.CreatedAfter,
		CreatedBefore: filters.CreatedBefore,
		UpdatedAfter:  filters.UpdatedAfter,
		UpdatedBefore: filters.UpdatedBefore,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
		SortBy:        filters.SortBy,
		SortOrder:     filters.SortOrder,
	}
}

// convertToRepoCountFilters converts admin NodeFilters to repository NodeCountFilters
func (s *adminService) convertToRepoCountFilters(filters NodeFilters) simplescene.NodeCountFilters {
	return simplescene.NodeCountFilters{
		SceneID:       filters.SceneID,
		SceneIDs:      filters.SceneIDs,
		Kind:          filters.Kind,
		Kinds:         filters.Kinds,
		NamePrefix:    filters.NamePrefix,
		CreatedAfter:  filters.CreatedAfter,
		CreatedBefore: filters.CreatedBefore,
		UpdatedAfter:  filters.UpdatedAfter,
		UpdatedBefore: filters.UpdatedBefore,
	}
}
