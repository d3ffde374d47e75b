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

// setupNodeHandlerTest creates a NodeHandler with a scene and one node already
// in place
func setupNodeHandlerTest(t *testing.T) (*NodeHandler, simplescene.Service, *simplescene.Node) {
	repo := memory.New()
	archiveStore := memorystorage.New()

	service, err := simplescene.New(
		simplescene.WithRepository(repo),
		simplescene.WithArchiveStore("memory", archiveStore),
		simplescene.WithEventSink(simplescene.NewNoopEventSink()),
	)
	require.NoError(t, err)

	scene, err := service.CreateScene(context.Background(), simplescene.CreateSceneRequest{Name: "shot_010"})
	require.NoError(t, err)

	node, err := service.CreateNode(context.Background(), simplescene.CreateNodeRequest{
		SceneID: scene.ID,
		Name:    "persp",
		Kind:    "camera",
	})
	require.NoError(t, err)

	handler := NewNodeHandler(service)
	return handler, service, node
}

func TestNodeHandler_GetNode_Success(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}", handler.GetNode)

	req := httptest.NewRequest(http.MethodGet, "/"+node.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp NodeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, node.ID.String(), resp.ID)
	assert.Equal(t, "persp", resp.Name)
	assert.Equal(t, "camera", resp.Kind)
}

func TestNodeHandler_GetNode_NotFound(t *testing.T) {
	handler, _, _ := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}", handler.GetNode)

	req := httptest.NewRequest(http.MethodGet, "/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNodeHandler_UpdateNode_Rename(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Patch("/{nodeID}", handler.UpdateNode)

	newName := "persp_main"
	body, err := json.Marshal(UpdateNodeRequest{Name: &newName})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/"+node.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp NodeResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "persp_main", resp.Name)
	// Kind is untouched when absent from the request
	assert.Equal(t, "camera", resp.Kind)
}

func TestNodeHandler_DeleteNode_Success(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Delete("/{nodeID}", handler.DeleteNode)

	req := httptest.NewRequest(http.MethodDelete, "/"+node.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	// Verify node is deleted
	_, err := service.GetNode(context.Background(), node.ID)
	assert.Error(t, err)
}

func TestNodeHandler_SetAttribute_String(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	body := []byte(`{"type":"string","value":"hero"}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/label", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "label", resp.Name)
	assert.Equal(t, "string", resp.Type)
	assert.Equal(t, "hero", resp.Value)
}

func TestNodeHandler_SetAttribute_Int(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	body := []byte(`{"type":"int","value":42}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/frame", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "int", resp.Type)
	// interface{} decoding turns JSON numbers into float64
	assert.Equal(t, float64(42), resp.Value)
}

func TestNodeHandler_SetAttribute_Float(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	body := []byte(`{"type":"float","value":2.5}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/scale", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "float", resp.Type)
	assert.Equal(t, 2.5, resp.Value)
}

func TestNodeHandler_SetAttribute_EnsureOnly(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	// Null value creates the slot without writing it
	body := []byte(`{"type":"int","value":null}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/frame", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	has, err := service.HasAttribute(context.Background(), node.ID, "frame")
	require.NoError(t, err)
	assert.True(t, has)

	got, err := service.GetInt(context.Background(), node.ID, "frame")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestNodeHandler_SetAttribute_Message(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	body := []byte(`{"type":"message"}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/look_at", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "message", resp.Type)
	assert.Nil(t, resp.Value)
}

func TestNodeHandler_SetAttribute_TypeMismatch(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	label := "hero"
	require.NoError(t, service.SetString(context.Background(), node.ID, "label", &label))

	// Writing an int into an existing string slot fails
	body := []byte(`{"type":"int","value":7}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/label", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNodeHandler_SetAttribute_InvalidType(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Put("/{nodeID}/attributes/{attr}", handler.SetAttribute)

	body := []byte(`{"type":"matrix","value":1}`)
	req := httptest.NewRequest(http.MethodPut, "/"+node.ID.String()+"/attributes/xform", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid attribute type")
}

func TestNodeHandler_GetAttribute_Success(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}/attributes/{attr}", handler.GetAttribute)

	frame := int64(1001)
	require.NoError(t, service.SetInt(context.Background(), node.ID, "frame", &frame))

	req := httptest.NewRequest(http.MethodGet, "/"+node.ID.String()+"/attributes/frame", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, node.ID.String(), resp.NodeID)
	assert.Equal(t, "frame", resp.Name)
	assert.Equal(t, float64(1001), resp.Value)
}

func TestNodeHandler_GetAttribute_NotFound(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}/attributes/{attr}", handler.GetAttribute)

	req := httptest.NewRequest(http.MethodGet, "/"+node.ID.String()+"/attributes/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNodeHandler_ListAttributes(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}/attributes", handler.ListAttributes)

	ctx := context.Background()
	label := "hero"
	require.NoError(t, service.SetString(ctx, node.ID, "label", &label))
	frame := int64(1001)
	require.NoError(t, service.SetInt(ctx, node.ID, "frame", &frame))

	req := httptest.NewRequest(http.MethodGet, "/"+node.ID.String()+"/attributes", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []AttributeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Len(t, resp, 2)
}

func TestNodeHandler_DeleteAttribute_Success(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Delete("/{nodeID}/attributes/{attr}", handler.DeleteAttribute)

	label := "hero"
	require.NoError(t, service.SetString(context.Background(), node.ID, "label", &label))

	req := httptest.NewRequest(http.MethodDelete, "/"+node.ID.String()+"/attributes/label", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	has, err := service.HasAttribute(context.Background(), node.ID, "label")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestNodeHandler_Connect_BySourceID(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{nodeID}/attributes/{attr}/connection", handler.Connect)

	source, err := service.CreateNode(context.Background(), simplescene.CreateNodeRequest{
		SceneID: node.SceneID,
		Name:    "top",
		Kind:    "camera",
	})
	require.NoError(t, err)

	body, err := json.Marshal(ConnectRequest{SourceID: source.ID.String()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+node.ID.String()+"/attributes/look_at/connection", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp []ConnectionResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.Len(t, resp, 1)
	assert.Equal(t, source.ID.String(), resp[0].SourceID)
	assert.Equal(t, node.ID.String(), resp[0].TargetID)
	assert.Equal(t, "look_at", resp[0].TargetAttr)
}

func TestNodeHandler_Connect_BySourceName(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{nodeID}/attributes/{attr}/connection", handler.Connect)

	source, err := service.CreateNode(context.Background(), simplescene.CreateNodeRequest{
		SceneID: node.SceneID,
		Name:    "top",
	})
	require.NoError(t, err)

	body, err := json.Marshal(ConnectRequest{SourceName: "top"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+node.ID.String()+"/attributes/look_at/connection", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp []ConnectionResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.Len(t, resp, 1)
	assert.Equal(t, source.ID.String(), resp[0].SourceID)
}

func TestNodeHandler_Connect_MissingSource(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{nodeID}/attributes/{attr}/connection", handler.Connect)

	body, err := json.Marshal(ConnectRequest{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/"+node.ID.String()+"/attributes/look_at/connection", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required 'source_id' or 'source_name' field")
}

func TestNodeHandler_Connect_ReplacesExisting(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Post("/{nodeID}/attributes/{attr}/connection", handler.Connect)

	ctx := context.Background()
	first, err := service.CreateNode(ctx, simplescene.CreateNodeRequest{SceneID: node.SceneID, Name: "top"})
	require.NoError(t, err)
	second, err := service.CreateNode(ctx, simplescene.CreateNodeRequest{SceneID: node.SceneID, Name: "side"})
	require.NoError(t, err)

	for _, source := range []*simplescene.Node{first, second} {
		body, err := json.Marshal(ConnectRequest{SourceID: source.ID.String()})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/"+node.ID.String()+"/attributes/look_at/connection", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// The second connect replaced the first
	conns, err := service.Connections(ctx, node.ID, "look_at")
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, second.ID, conns[0].SourceID)
}

func TestNodeHandler_ListConnections_Empty(t *testing.T) {
	handler, _, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Get("/{nodeID}/attributes/{attr}/connections", handler.ListConnections)

	req := httptest.NewRequest(http.MethodGet, "/"+node.ID.String()+"/attributes/look_at/connections", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []ConnectionResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Empty(t, resp)
}

func TestNodeHandler_Disconnect(t *testing.T) {
	handler, service, node := setupNodeHandlerTest(t)
	router := chi.NewRouter()
	router.Delete("/{nodeID}/attributes/{attr}/connection", handler.Disconnect)

	ctx := context.Background()
	source, err := service.CreateNode(ctx, simplescene.CreateNodeRequest{SceneID: node.SceneID, Name: "top"})
	require.NoError(t, err)
	require.NoError(t, service.SetConnection(ctx, node.ID, "look_at", simplescene.ConnNode(source)))

	req := httptest.NewRequest(http.MethodDelete, "/"+node.ID.String()+"/attributes/look_at/connection", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	conns, err := service.Connections(ctx, node.ID, "look_at")
	require.NoError(t, err)
	assert.Empty(t, conns)

	// Disconnecting leaves the attribute slot in place
	has, err := service.HasAttribute(ctx, node.ID, "look_at")
	require.NoError(t, err)
	assert.True(t, has)
}
