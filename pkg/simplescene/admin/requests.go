package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

// ListNodesRequest contains parameters for admin node listing
type ListNodesRequest struct {
	Filters NodeFilters `json:"filters"`
}

// ListNodesResponse contains the paginated list of nodes
type ListNodesResponse struct {
	Nodes   []*simplescene.Node `json:"nodes"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
	HasMore bool                `json:"has_more"`
}

// CountRequest contains parameters for counting nodes
type CountRequest struct {
	Filters NodeFilters `json:"filters"`
}

// CountResponse contains the count result
type CountResponse struct {
	Count int64 `json:"count"`
}

// StatisticsRequest contains parameters for retrieving node statistics
type StatisticsRequest struct {
	Filters NodeFilters       `json:"filters"`
	Options StatisticsOptions `json:"options"`
}

// StatisticsResponse contains the statistics result
type StatisticsResponse struct {
	Statistics NodeStatistics `json:"statistics"`
	ComputedAt time.Time      `json:"computed_at"`
}

// ListNodesOption provides functional options for building node filters
type ListNodesOption func(*NodeFilters)

// NewFilters builds a NodeFilters from the given options
func NewFilters(opts ...ListNodesOption) NodeFilters {
	var f NodeFilters
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithSceneID filters by scene ID
func WithSceneID(sceneID uuid.UUID) ListNodesOption {
	return func(f *NodeFilters) {
		f.SceneID = &sceneID
	}
}

// WithSceneIDs filters by multiple scene IDs
func WithSceneIDs(sceneIDs ...uuid.UUID) ListNodesOption {
	return func(f *NodeFilters) {
		f.SceneIDs = sceneIDs
	}
}

// WithKind filters by node kind
func WithKind(kind string) ListNodesOption {
	return func(f *NodeFilters) {
		f.Kind = &kind
	}
}

// WithKinds filters by multiple node kinds
func WithKinds(kinds ...string) ListNodesOption {
	return func(f *NodeFilters) {
		f.Kinds = kinds
	}
}

// WithNamePrefix filters by node name prefix
func WithNamePrefix(prefix string) ListNodesOption {
	return func(f *NodeFilters) {
		f.NamePrefix = &prefix
	}
}

// WithCreatedAfter filters by created after time
func WithCreatedAfter(t time.Time) ListNodesOption {
	return func(f *NodeFilters) {
		f.CreatedAfter = &t
	}
}

// WithCreatedBefore filters by created before time
func WithCreatedBefore(t time.Time) ListNodesOption {
	return func(f *NodeFilters) {
		f.CreatedBefore = &t
	}
}

// WithUpdatedAfter filters by updated after time
func WithUpdatedAfter(t time.Time) ListNodesOption {
	return func(f *NodeFilters) {
		f.UpdatedAfter = &t
	}
}

// WithUpdatedBefore filters by updated before time
func WithUpdatedBefore(t time.Time) ListNodesOption {
	return func(f *NodeFilters) {
		f.UpdatedBefore = &t
	}
}

// WithLimit sets the pagination limit
func WithLimit(limit int) ListNodesOption {
	return func(f *NodeFilters) {
		f.Limit = &limit
	}
}

// WithOffset sets the pagination offset
func WithOffset(offset int) ListNodesOption {
	return func(f *NodeFilters) {
		f.Offset = &offset
	}
}

// WithPagination sets both limit and offset
func WithPagination(limit, offset int) ListNodesOption {
	return func(f *NodeFilters) {
		f.Limit = &limit
		f.Offset = &offset
	}
}

// WithSortBy sets the sort field
func WithSortBy(sortBy string) ListNodesOption {
	return func(f *NodeFilters) {
		f.SortBy = &sortBy
	}
}

// WithSortOrder sets the sort order
func WithSortOrder(sortOrder string) ListNodesOption {
	return func(f *NodeFilters) {
		f.SortOrder = &sortOrder
	}
}
