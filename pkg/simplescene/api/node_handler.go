package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

// AttributeResponse is the response body for an attribute. Value carries the
// typed payload: a string, an integer, a float, or null for message
// attributes.
type AttributeResponse struct {
	NodeID    string      `json:"node_id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Value     interface{} `json:"value"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ConnectionResponse is the response body for a connection
type ConnectionResponse struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	TargetID   string    `json:"target_id"`
	TargetAttr string    `json:"target_attr"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateNodeRequest is the request body for updating a node.
// Nil fields are left unchanged.
type UpdateNodeRequest struct {
	Name *string `json:"name,omitempty"`
	Kind *string `json:"kind,omitempty"`
}

// SetAttributeRequest is the request body for writing an attribute.
// A null (or absent) value creates the attribute without writing it.
type SetAttributeRequest struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ConnectRequest is the request body for connecting a source node into an
// attribute slot. Exactly one of source_id and source_name must be set;
// source_name is resolved within the target node's scene.
type ConnectRequest struct {
	SourceID   string `json:"source_id,omitempty"`
	SourceName string `json:"source_name,omitempty"`
}

// NodeHandler handles HTTP requests for nodes using pkg/simplescene
type NodeHandler struct {
	service simplescene.Service
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(service simplescene.Service) *NodeHandler {
	return &NodeHandler{
		service: service,
	}
}

// Routes returns the routes for nodes
func (h *NodeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{nodeID}", h.GetNode)
	r.Patch("/{nodeID}", h.UpdateNode)
	r.Delete("/{nodeID}", h.DeleteNode)

	r.Get("/{nodeID}/attributes", h.ListAttributes)
	r.Get("/{nodeID}/attributes/{attr}", h.GetAttribute)
	r.Put("/{nodeID}/attributes/{attr}", h.SetAttribute)
	r.Delete("/{nodeID}/attributes/{attr}", h.DeleteAttribute)

	r.Get("/{nodeID}/attributes/{attr}/connections", h.ListConnections)
	r.Post("/{nodeID}/attributes/{attr}/connection", h.Connect)
	r.Delete("/{nodeID}/attributes/{attr}/connection", h.Disconnect)

	return r
}

func newAttributeResponse(attr *simplescene.Attribute) AttributeResponse {
	resp := AttributeResponse{
		NodeID:    attr.NodeID.String(),
		Name:      attr.Name,
		Type:      string(attr.Type),
		CreatedAt: attr.CreatedAt,
		UpdatedAt: attr.UpdatedAt,
	}
	switch attr.Type {
	case simplescene.AttrTypeString:
		resp.Value = attr.StringValue
	case simplescene.AttrTypeInt:
		resp.Value = attr.IntValue
	case simplescene.AttrTypeFloat:
		resp.Value = attr.FloatValue
	case simplescene.AttrTypeMessage:
		// Message attributes carry no value
	}
	return resp
}

func newConnectionResponse(conn *simplescene.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:         conn.ID.String(),
		SourceID:   conn.SourceID.String(),
		TargetID:   conn.TargetID.String(),
		TargetAttr: conn.TargetAttr,
		Seq:        conn.Seq,
		CreatedAt:  conn.CreatedAt,
	}
}

func parseNodeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "nodeID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid node ID", "node_id", idStr, "error", err)
		http.Error(w, "Invalid node ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// GetNode retrieves a node by ID
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	node, err := h.service.GetNode(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get node", "node_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, newNodeResponse(node))
}

// UpdateNode updates a node's name and kind
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.service.GetNode(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get node", "node_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Kind != nil {
		node.Kind = *req.Kind
	}

	updated, err := h.service.UpdateNode(r.Context(), simplescene.UpdateNodeRequest{Node: node})
	if err != nil {
		slog.Error("Failed to update node", "node_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Node updated", "node_id", id.String())
	render.JSON(w, r, newNodeResponse(updated))
}

// DeleteNode deletes a node, its attributes, and its connections
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteNode(r.Context(), id); err != nil {
		slog.Error("Failed to delete node", "node_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Node deleted", "node_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ListAttributes lists the attributes of a node
func (h *NodeHandler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	attrs, err := h.service.ListAttributes(r.Context(), id)
	if err != nil {
		slog.Error("Failed to list attributes", "node_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]AttributeResponse, 0, len(attrs))
	for _, attr := range attrs {
		resp = append(resp, newAttributeResponse(attr))
	}

	render.JSON(w, r, resp)
}

// GetAttribute retrieves a single attribute with its typed value
func (h *NodeHandler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	attr, err := h.service.GetAttribute(r.Context(), id, name)
	if err != nil {
		slog.Error("Failed to get attribute", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, newAttributeResponse(attr))
}

// SetAttribute writes a typed attribute value, creating the attribute on
// first use
func (h *NodeHandler) SetAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	var req SetAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch simplescene.AttrType(req.Type) {
	case simplescene.AttrTypeString:
		var value *string
		if !rawIsNull(req.Value) {
			var s string
			if jsonErr := json.Unmarshal(req.Value, &s); jsonErr != nil {
				http.Error(w, "Invalid string value", http.StatusBadRequest)
				return
			}
			value = &s
		}
		err = h.service.SetString(r.Context(), id, name, value)
	case simplescene.AttrTypeInt:
		var value *int64
		if !rawIsNull(req.Value) {
			var n int64
			if jsonErr := json.Unmarshal(req.Value, &n); jsonErr != nil {
				http.Error(w, "Invalid int value", http.StatusBadRequest)
				return
			}
			value = &n
		}
		err = h.service.SetInt(r.Context(), id, name, value)
	case simplescene.AttrTypeFloat:
		var value *float64
		if !rawIsNull(req.Value) {
			var f float64
			if jsonErr := json.Unmarshal(req.Value, &f); jsonErr != nil {
				http.Error(w, "Invalid float value", http.StatusBadRequest)
				return
			}
			value = &f
		}
		err = h.service.SetFloat(r.Context(), id, name, value)
	case simplescene.AttrTypeMessage:
		_, err = h.service.EnsureMessage(r.Context(), id, name)
	default:
		slog.Error("Invalid attribute type", "type", req.Type)
		http.Error(w, "Invalid attribute type", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Failed to set attribute", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	attr, err := h.service.GetAttribute(r.Context(), id, name)
	if err != nil {
		slog.Error("Failed to read back attribute", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Attribute set", "node_id", id.String(), "attr", name, "type", req.Type)
	render.JSON(w, r, newAttributeResponse(attr))
}

// DeleteAttribute removes an attribute and its inbound connections
func (h *NodeHandler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	if err := h.service.DeleteAttribute(r.Context(), id, name); err != nil {
		slog.Error("Failed to delete attribute", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Attribute deleted", "node_id", id.String(), "attr", name)
	w.WriteHeader(http.StatusNoContent)
}

// ListConnections lists the inbound connections of an attribute slot
func (h *NodeHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	conns, err := h.service.Connections(r.Context(), id, name)
	if err != nil {
		slog.Error("Failed to list connections", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		resp = append(resp, newConnectionResponse(conn))
	}

	render.JSON(w, r, resp)
}

// Connect replaces the inbound connections of an attribute slot with a
// single connection from the given source
func (h *NodeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var value simplescene.ConnValue
	switch {
	case req.SourceID != "":
		sourceID, err := uuid.Parse(req.SourceID)
		if err != nil {
			slog.Error("Invalid source ID", "source_id", req.SourceID, "error", err)
			http.Error(w, "Invalid source ID", http.StatusBadRequest)
			return
		}
		source, err := h.service.GetNode(r.Context(), sourceID)
		if err != nil {
			slog.Error("Failed to get source node", "source_id", req.SourceID, "error", err)
			writeServiceError(w, err)
			return
		}
		value = simplescene.ConnNode(source)
	case req.SourceName != "":
		value = simplescene.ConnString(req.SourceName)
	default:
		http.Error(w, "Missing required 'source_id' or 'source_name' field", http.StatusBadRequest)
		return
	}

	if err := h.service.SetConnection(r.Context(), id, name, value); err != nil {
		slog.Error("Failed to connect", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	conns, err := h.service.Connections(r.Context(), id, name)
	if err != nil {
		slog.Error("Failed to list connections", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		resp = append(resp, newConnectionResponse(conn))
	}

	slog.Info("Connection created", "node_id", id.String(), "attr", name)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// Disconnect removes all inbound connections of an attribute slot
func (h *NodeHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attr")

	if err := h.service.Disconnect(r.Context(), id, name); err != nil {
		slog.Error("Failed to disconnect", "node_id", id.String(), "attr", name, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Disconnected", "node_id", id.String(), "attr", name)
	w.WriteHeader(http.StatusNoContent)
}

// rawIsNull reports whether a raw JSON value is absent or literal null
func rawIsNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
