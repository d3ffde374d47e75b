package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-scene/pkg/simplescene"
	"github.com/tendant/simple-scene/pkg/simplescene/repo/memory"
	memorystorage "github.com/tendant/simple-scene/pkg/simplescene/storage/memory"
)

// setupSceneHandlerTest creates a SceneHandler with in-memory repositories for testing
func setupSceneHandlerTest(t *testing.T) (*SceneHandler, simplescene.Service) {
	repo := memory.New()
	archiveStore := memorystorage.New()

	service, err := simplescene.New(
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("memory", archiveStore),
		simplescene.WithEventSink(simplescene.NewNoopEventSink()),
	)
	require.NoError(t, err)

	handler := NewSceneHandler(service)
	return handler, service
}

func TestSceneHandler_CreateScene_Success(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/", handler.CreateScene)

	reqBody := CreateSceneRequest{Name: "shot_010"}

	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SceneResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "shot_010", resp.Name)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestSceneHandler_CreateScene_DuplicateName(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/", handler.CreateScene)

	_, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	body, err := json.Marshal(CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSceneHandler_CreateScene_InvalidBody(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/", handler.CreateScene)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSceneHandler_GetScene_Success(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{sceneID}", handler.GetScene)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/"+scene.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SceneResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, scene.ID.String(), resp.ID)
	assert.Equal(t, "shot_010", resp.Name)
}

func TestSceneHandler_GetScene_NotFound(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{sceneID}", handler.GetScene)

	req := httptest.NewRequest(http.MethodGet, "/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSceneHandler_GetScene_InvalidID(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{sceneID}", handler.GetScene)

	req := httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid scene ID")
}

func TestSceneHandler_ListScenes(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/", handler.ListScenes)

	_, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)
	_, err = service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_020"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []SceneResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Len(t, resp, 2)
}

func TestSceneHandler_DeleteScene_Success(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Delete("/{sceneID}", handler.DeleteScene)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/"+scene.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	// Verify scene is deleted
	_, err = service.GetScene(context.Background(), scene.ID)
	assert.Error(t, err)
}

func TestSceneHandler_CreateNode_Success(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{sceneID}/nodes", handler.CreateNode)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	body, err := json.Marshal(CreateNodeRequest{Name: "persp", Kind: "camera"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+scene.ID.String()+"/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp NodeResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, scene.ID.String(), resp.SceneID)
	assert.Equal(t, "persp", resp.Name)
	assert.Equal(t, "camera", resp.Kind)
}

func TestSceneHandler_CreateNode_DuplicateName(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{sceneID}/nodes", handler.CreateNode)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)
	_, err = service.CreateNode(context.Background(), simplescene.CreateNodeRequest{
		SceneID: scene.ID,
		Name:    "persp",
	})
	require.NoError(t, err)

	body, err := json.Marshal(CreateNodeRequest{Name: "persp"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+scene.ID.String()+"/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSceneHandler_CreateNode_SceneNotFound(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{sceneID}/nodes", handler.CreateNode)

	body, err := json.Marshal(CreateNodeRequest{Name: "persp"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+uuid.New().String()+"/nodes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSceneHandler_ListNodes(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{sceneID}/nodes", handler.ListNodes)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)
	for _, name := range []string{"persp", "top", "side"} {
		_, err = service.CreateNode(context.Background(), simplescene.CreateNodeRequest{
			SceneID: scene.ID,
			Name:    name,
			Kind:    "camera",
		})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/"+scene.ID.String()+"/nodes", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []NodeResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Len(t, resp, 3)
}

func TestSceneHandler_ExportScene_EmptyBody(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{sceneID}/export", handler.ExportScene)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	// No body: export to the only registered store under a generated key
	req := httptest.NewRequest(http.MethodPost, "/"+scene.ID.String()+"/export", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ArchiveResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Key)
	assert.Greater(t, resp.Size, int64(0))
}

func TestSceneHandler_ExportImport_RoundTrip(t *testing.T) {
	handler, service := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{sceneID}/export", handler.ExportScene)
	router.Post("/import", handler.ImportScene)

	ctx := context.Background()
	scene, err := service.CreateScene(ctx, simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)
	node, err := service.CreateNode(ctx, simplescene.CreateNodeRequest{
		SceneID: scene.ID,
		Name:    "persp",
		Kind:    "camera",
	})
	require.NoError(t, err)
	focal := 35.0
	require.NoError(t, service.SetFloat(ctx, node.ID, "focal_length", &focal))

	// Export with an explicit key
	body, err := json.Marshal(ExportSceneRequest{Key: "exports/shot_010.json"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+scene.ID.String()+"/export", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	// Import under a different scene name
	body, err = json.Marshal(ImportSceneRequest{Key: "exports/shot_010.json", SceneName: "shot_010_copy"})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp SceneResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "shot_010_copy", resp.Name)
	assert.NotEqual(t, scene.ID.String(), resp.ID)

	// The imported scene carries the node and its attribute
	imported, err := service.GetSceneByName(ctx, "shot_010_copy")
	require.NoError(t, err)
	importedNode, err := service.GetNodeByName(ctx, imported.ID, "persp")
	require.NoError(t, err)
	got, err := service.GetFloat(ctx, importedNode.ID, "focal_length")
	require.NoError(t, err)
	assert.Equal(t, 35.0, got)
}

func TestSceneHandler_ImportScene_MissingKey(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/import", handler.ImportScene)

	body, err := json.Marshal(ImportSceneRequest{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required 'key' field")
}

func TestSceneHandler_ImportScene_UnknownKey(t *testing.T) {
	handler, _ := setupSceneHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/import", handler.ImportScene)

	body, err := json.Marshal(ImportSceneRequest{Key: "exports/missing.json"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
