package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
)

// AdminListResponse is the response body for a scene-wide node listing
type AdminListResponse struct {
	Nodes   []NodeResponse `json:"nodes"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	HasMore bool           `json:"has_more"`
}

// AdminCountResponse is the response body for a node count
type AdminCountResponse struct {
	Count int64 `json:"count"`
}

// AdminStatisticsResponse is the response body for node statistics
type AdminStatisticsResponse struct {
	Statistics admin.NodeStatistics `json:"statistics"`
	ComputedAt time.Time            `json:"computed_at"`
}

// AdminHandler handles HTTP requests for scene-wide admin operations.
// These endpoints bypass per-scene scoping and must only be mounted behind
// authentication.
type AdminHandler struct {
	admin admin.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService admin.AdminService) *AdminHandler {
	return &AdminHandler{
		admin: adminService,
	}
}

// Routes returns the routes for admin operations
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/nodes", h.ListNodes)
	r.Get("/nodes/count", h.CountNodes)
	r.Get("/statistics", h.GetStatistics)

	return r
}

// parseAdminFilters builds node filters from query parameters
func parseAdminFilters(r *http.Request) (admin.NodeFilters, error) {
	var opts []admin.ListNodesOption
	q := r.URL.Query()

	if v := q.Get("scene_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return admin.NodeFilters{}, err
		}
		opts = append(opts, admin.WithSceneID(id))
	}
	if v := q.Get("kind"); v != "" {
		opts = append(opts, admin.WithKind(v))
	}
	if v := q.Get("name_prefix"); v != "" {
		opts = append(opts, admin.WithNamePrefix(v))
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return admin.NodeFilters{}, err
		}
		opts = append(opts, admin.WithLimit(n))
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return admin.NodeFilters{}, err
		}
		opts = append(opts, admin.WithOffset(n))
	}
	if v := q.Get("sort_by"); v != "" {
		opts = append(opts, admin.WithSortBy(v))
	}
	if v := q.Get("sort_order"); v != "" {
		opts = append(opts, admin.WithSortOrder(v))
	}

	return admin.NewFilters(opts...), nil
}

// ListNodes lists nodes across all scenes
func (h *AdminHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	filters, err := parseAdminFilters(r)
	if err != nil {
		slog.Error("Invalid admin filters", "error", err)
		http.Error(w, "Invalid filter parameters", http.StatusBadRequest)
		return
	}

	result, err := h.admin.ListAllNodes(r.Context(), admin.ListNodesRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to list nodes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	nodes := make([]NodeResponse, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		nodes = append(nodes, newNodeResponse(node))
	}

	render.JSON(w, r, AdminListResponse{
		Nodes:   nodes,
		Limit:   result.Limit,
		Offset:  result.Offset,
		HasMore: result.HasMore,
	})
}

// CountNodes counts nodes across all scenes
func (h *AdminHandler) CountNodes(w http.ResponseWriter, r *http.Request) {
	filters, err := parseAdminFilters(r)
	if err != nil {
		slog.Error("Invalid admin filters", "error", err)
		http.Error(w, "Invalid filter parameters", http.StatusBadRequest)
		return
	}

	result, err := h.admin.CountNodes(r.Context(), admin.CountRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to count nodes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, AdminCountResponse{Count: result.Count})
}

// GetStatistics computes aggregate node statistics
func (h *AdminHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	filters, err := parseAdminFilters(r)
	if err != nil {
		slog.Error("Invalid admin filters", "error", err)
		http.Error(w, "Invalid filter parameters", http.StatusBadRequest)
		return
	}

	result, err := h.admin.GetStatistics(r.Context(), admin.StatisticsRequest{
		Filters: filters,
		Options: admin.DefaultStatisticsOptions(),
	})
	if err != nil {
		slog.Error("Failed to compute statistics", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, AdminStatisticsResponse{
		Statistics: result.Statistics,
		ComputedAt: result.ComputedAt,
	})
}
