package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

// SceneResponse is the response body for a scene
type SceneResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeResponse is the response body for a node
type NodeResponse struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"scene_id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArchiveResponse is the response body for an exported scene archive
type ArchiveResponse struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
	ETag      string    `json:"etag,omitempty"`
}

// CreateSceneRequest is the request body for creating a scene
type CreateSceneRequest struct {
	Name string `json:"name"`
}

// CreateNodeRequest is the request body for creating a node in a scene
type CreateNodeRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// ExportSceneRequest is the request body for exporting a scene.
// All fields are optional; an empty body exports to the default store
// under a generated key.
type ExportSceneRequest struct {
	Archive string `json:"archive,omitempty"`
	Key     string `json:"key,omitempty"`
}

// ImportSceneRequest is the request body for importing a scene archive
type ImportSceneRequest struct {
	Archive   string `json:"archive,omitempty"`
	Key       string `json:"key"`
	SceneName string `json:"scene_name,omitempty"`
}

// SceneHandler handles HTTP requests for scenes using pkg/simplescene
type SceneHandler struct {
	service simplescene.Service
}

// NewSceneHandler creates a new scene handler
func NewSceneHandler(service simplescene.Service) *SceneHandler {
	return &SceneHandler{
		service: service,
	}
}

// Routes returns the routes for scenes
func (h *SceneHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateScene)
	r.Get("/", h.ListScenes)
	r.Post("/import", h.ImportScene)
	r.Get("/{sceneID}", h.GetScene)
	r.Delete("/{sceneID}", h.DeleteScene)

	r.Post("/{sceneID}/nodes", h.CreateNode)
	r.Get("/{sceneID}/nodes", h.ListNodes)
	r.Post("/{sceneID}/export", h.ExportScene)

	return r
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, simplescene.ErrSceneNotFound),
		errors.Is(err, simplescene.ErrNodeNotFound),
		errors.Is(err, simplescene.ErrAttributeNotFound),
		errors.Is(err, simplescene.ErrArchiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplescene.ErrSceneExists),
		errors.Is(err, simplescene.ErrNodeExists),
		errors.Is(err, simplescene.ErrAttributeExists):
		return http.StatusConflict
	case errors.Is(err, simplescene.ErrInvalidName),
		errors.Is(err, simplescene.ErrInvalidAttrType),
		errors.Is(err, simplescene.ErrAttributeType),
		errors.Is(err, simplescene.ErrArchiveStoreNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes a service error with its mapped status code
func writeServiceError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

func newSceneResponse(scene *simplescene.Scene) SceneResponse {
	return SceneResponse{
		ID:        scene.ID.String(),
		Name:      scene.Name,
		CreatedAt: scene.CreatedAt,
		UpdatedAt: scene.UpdatedAt,
	}
}

func newNodeResponse(node *simplescene.Node) NodeResponse {
	return NodeResponse{
		ID:        node.ID.String(),
		SceneID:   node.SceneID.String(),
		Name:      node.Name,
		Kind:      node.Kind,
		CreatedAt: node.CreatedAt,
		UpdatedAt: node.UpdatedAt,
	}
}

// CreateScene creates a new scene
func (h *SceneHandler) CreateScene(w http.ResponseWriter, r *http.Request) {
	var req CreateSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := h.service.CreateScene(r.Context(), simplescene.CreateSceneRequest{
		Name: req.Name,
	})
	if err != nil {
		slog.Error("Failed to create scene", "name", req.Name, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Scene created", "scene_id", scene.ID.String(), "name", scene.Name)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newSceneResponse(scene))
}

// ListScenes lists all scenes
func (h *SceneHandler) ListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := h.service.ListScenes(r.Context())
	if err != nil {
		slog.Error("Failed to list scenes", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]SceneResponse, 0, len(scenes))
	for _, scene := range scenes {
		resp = append(resp, newSceneResponse(scene))
	}

	render.JSON(w, r, resp)
}

// GetScene retrieves a scene by ID
func (h *SceneHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "sceneID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid scene ID", "scene_id", idStr, "error", err)
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	scene, err := h.service.GetScene(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get scene", "scene_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, newSceneResponse(scene))
}

// DeleteScene deletes a scene and everything in it
func (h *SceneHandler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "sceneID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid scene ID", "scene_id", idStr, "error", err)
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteScene(r.Context(), id); err != nil {
		slog.Error("Failed to delete scene", "scene_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Scene deleted", "scene_id", idStr)
	w.WriteHeader(http.StatusNoContent)
}

// CreateNode creates a new node in a scene
func (h *SceneHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	sceneIDStr := chi.URLParam(r, "sceneID")
	sceneID, err := uuid.Parse(sceneIDStr)
	if err != nil {
		slog.Error("Invalid scene ID", "scene_id", sceneIDStr, "error", err)
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.service.CreateNode(r.Context(), simplescene.CreateNodeRequest{
		SceneID: sceneID,
		Name:    req.Name,
		Kind:    req.Kind,
	})
	if err != nil {
		slog.Error("Failed to create node", "scene_id", sceneIDStr, "name", req.Name, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Node created", "node_id", node.ID.String(), "scene_id", sceneIDStr, "name", node.Name)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newNodeResponse(node))
}

// ListNodes lists the nodes in a scene
func (h *SceneHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	sceneIDStr := chi.URLParam(r, "sceneID")
	sceneID, err := uuid.Parse(sceneIDStr)
	if err != nil {
		slog.Error("Invalid scene ID", "scene_id", sceneIDStr, "error", err)
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	nodes, err := h.service.ListNodes(r.Context(), sceneID)
	if err != nil {
		slog.Error("Failed to list nodes", "scene_id", sceneIDStr, "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]NodeResponse, 0, len(nodes))
	for _, node := range nodes {
		resp = append(resp, newNodeResponse(node))
	}

	render.JSON(w, r, resp)
}

// ExportScene exports a scene to an archive store
func (h *SceneHandler) ExportScene(w http.ResponseWriter, r *http.Request) {
	sceneIDStr := chi.URLParam(r, "sceneID")
	sceneID, err := uuid.Parse(sceneIDStr)
	if err != nil {
		slog.Error("Invalid scene ID", "scene_id", sceneIDStr, "error", err)
		http.Error(w, "Invalid scene ID", http.StatusBadRequest)
		return
	}

	// Body is optional; an empty body uses the default store and key
	var req ExportSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.service.ExportScene(r.Context(), simplescene.ExportSceneRequest{
		SceneID: sceneID,
		Archive: req.Archive,
		Key:     req.Key,
	})
	if err != nil {
		slog.Error("Failed to export scene", "scene_id", sceneIDStr, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Scene exported", "scene_id", sceneIDStr, "key", info.Key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ArchiveResponse{
		Key:       info.Key,
		Size:      info.Size,
		UpdatedAt: info.UpdatedAt,
		ETag:      info.ETag,
	})
}

// ImportScene recreates a scene from an archive
func (h *SceneHandler) ImportScene(w http.ResponseWriter, r *http.Request) {
	var req ImportSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Key == "" {
		http.Error(w, "Missing required 'key' field", http.StatusBadRequest)
		return
	}

	scene, err := h.service.ImportScene(r.Context(), simplescene.ImportSceneRequest{
		Archive:   req.Archive,
		Key:       req.Key,
		SceneName: req.SceneName,
	})
	if err != nil {
		slog.Error("Failed to import scene", "key", req.Key, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Scene imported", "scene_id", scene.ID.String(), "key", req.Key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newSceneResponse(scene))
}
