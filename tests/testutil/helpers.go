package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// SceneResponse represents the response from scene-related API endpoints
type SceneResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NodeResponse represents the response from node-related API endpoints
type NodeResponse struct {
	ID        string `json:"id"`
	SceneID   string `json:"scene_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AttributeResponse represents the response from attribute-related API endpoints
type AttributeResponse struct {
	NodeID    string      `json:"node_id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Value     interface{} `json:"value"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// ConnectionResponse represents the response from connection-related API endpoints
type ConnectionResponse struct {
	ID         string `json:"id"`
	SourceID   string `json:"source_id"`
	TargetID   string `json:"target_id"`
	TargetAttr string `json:"target_attr"`
	Seq        int    `json:"seq"`
	CreatedAt  string `json:"created_at"`
}

// ArchiveResponse represents the response from scene export endpoints
type ArchiveResponse struct {
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	UpdatedAt string `json:"updated_at"`
	ETag      string `json:"etag,omitempty"`
}

// CreateScene creates a new scene via the API
func CreateScene(t *testing.T, serverURL, name string) SceneResponse {
	reqBody := map[string]string{
		"name": name,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/scenes", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var scene SceneResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &scene)
	require.NoError(t, err)

	return scene
}

// CreateNode creates a new node in a scene via the API
func CreateNode(t *testing.T, serverURL, sceneID, name, kind string) NodeResponse {
	reqBody := map[string]string{
		"name": name,
		"kind": kind,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/scenes/"+sceneID+"/nodes", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var node NodeResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &node)
	require.NoError(t, err)

	return node
}

// ListNodes lists the nodes of a scene via the API
func ListNodes(t *testing.T, serverURL, sceneID string) []NodeResponse {
	resp, err := http.Get(serverURL + "/scenes/" + sceneID + "/nodes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var nodes []NodeResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &nodes)
	require.NoError(t, err)

	return nodes
}

// SetAttribute sets an attribute on a node via the API
func SetAttribute(t *testing.T, serverURL, nodeID, attr, attrType string, value interface{}) AttributeResponse {
	reqBody := map[string]interface{}{
		"type":  attrType,
		"value": value,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req, err := http.NewRequest("PUT", serverURL+"/nodes/"+nodeID+"/attributes/"+attr, bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var attribute AttributeResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &attribute)
	require.NoError(t, err)

	return attribute
}

// GetAttribute gets an attribute of a node via the API
func GetAttribute(t *testing.T, serverURL, nodeID, attr string) AttributeResponse {
	resp, err := http.Get(serverURL + "/nodes/" + nodeID + "/attributes/" + attr)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var attribute AttributeResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &attribute)
	require.NoError(t, err)

	return attribute
}

// Connect connects a source node into a node attribute via the API
func Connect(t *testing.T, serverURL, nodeID, attr, sourceID string) []ConnectionResponse {
	reqBody := map[string]string{
		"source_id": sourceID,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/nodes/"+nodeID+"/attributes/"+attr+"/connection", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var connections []ConnectionResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &connections)
	require.NoError(t, err)

	return connections
}

// ConnectByName stores a source name string on a node attribute via the API
func ConnectByName(t *testing.T, serverURL, nodeID, attr, sourceName string) {
	reqBody := map[string]string{
		"source_name": sourceName,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/nodes/"+nodeID+"/attributes/"+attr+"/connection", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()
}

// GetConnections lists the incoming connections of a node attribute via the API
func GetConnections(t *testing.T, serverURL, nodeID, attr string) []ConnectionResponse {
	resp, err := http.Get(serverURL + "/nodes/" + nodeID + "/attributes/" + attr + "/connections")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var connections []ConnectionResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &connections)
	require.NoError(t, err)

	return connections
}

// Disconnect removes the connections of a node attribute via the API
func Disconnect(t *testing.T, serverURL, nodeID, attr string) {
	req, err := http.NewRequest("DELETE", serverURL+"/nodes/"+nodeID+"/attributes/"+attr+"/connection", nil)
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	defer resp.Body.Close()
}

// ExportScene exports a scene to the default archive store via the API
func ExportScene(t *testing.T, serverURL, sceneID string) ArchiveResponse {
	resp, err := http.Post(serverURL+"/scenes/"+sceneID+"/export", "application/json", bytes.NewBuffer([]byte("{}")))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var archive ArchiveResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &archive)
	require.NoError(t, err)

	return archive
}

// ImportScene imports a scene from an archive key via the API
func ImportScene(t *testing.T, serverURL, key, sceneName string) SceneResponse {
	reqBody := map[string]string{
		"key":        key,
		"scene_name": sceneName,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/scenes/import", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var scene SceneResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &scene)
	require.NoError(t, err)

	return scene
}

// AttemptCreateNode attempts to create a node and returns the response
func AttemptCreateNode(t *testing.T, serverURL, sceneID, name, kind string) *http.Response {
	reqBody := map[string]string{
		"name": name,
		"kind": kind,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/scenes/"+sceneID+"/nodes", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)

	return resp
}
