package admin

import (
	"time"

	"github.com/google/uuid"
)

// NodeStatistics provides aggregated statistics about nodes
type NodeStatistics struct {
	TotalCount      int64            `json:"total_count"`
	ByKind          map[string]int64 `json:"by_kind,omitempty"`
	ByScene         map[string]int64 `json:"by_scene,omitempty"`
	ByAttrType      map[string]int64 `json:"by_attr_type,omitempty"`
	ConnectionCount int64            `json:"connection_count,omitempty"`
	OldestNode      *time.Time       `json:"oldest_node,omitempty"`
	NewestNode      *time.Time       `json:"newest_node,omitempty"`
}

// NodeFilters defines flexible filtering options for admin operations
type NodeFilters struct {
	// Scene filters
	SceneID  *uuid.UUID  `json:"scene_id,omitempty"`
	SceneIDs []uuid.UUID `json:"scene_ids,omitempty"`

	// Kind filters
	Kind  *string  `json:"kind,omitempty"`
	Kinds []string `json:"kinds,omitempty"`

	// Name filters
	NamePrefix *string `json:"name_prefix,omitempty"`

	// Time range filters
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`

	// Pagination
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`

	// Sorting
	SortBy    *string `json:"sort_by,omitempty"`    // created_at, updated_at, name, kind
	SortOrder *string `json:"sort_order,omitempty"` // asc, desc
}

// StatisticsOptions defines what statistics to compute
type StatisticsOptions struct {
	IncludeKindBreakdown     bool `json:"include_kind_breakdown"`
	IncludeSceneBreakdown    bool `json:"include_scene_breakdown"`
	IncludeAttrTypeBreakdown bool `json:"include_attr_type_breakdown"`
	IncludeConnectionCount   bool `json:"include_connection_count"`
	IncludeTimeRange         bool `json:"include_time_range"`
}

// DefaultStatisticsOptions returns statistics options with all breakdowns enabled
func DefaultStatisticsOptions() StatisticsOptions {
	return StatisticsOptions{
		IncludeKindBreakdown:     true,
		IncludeSceneBreakdown:    true,
		IncludeAttrTypeBreakdown: true,
		IncludeConnectionCount:   true,
		IncludeTimeRange:         true,
	}
}
