package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-scene/pkg/simplescene"
)

// Repository implements simplescene.Repository using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	scenes       map[uuid.UUID]*simplescene.Scene
	sceneOrder   []uuid.UUID
	nodes        map[uuid.UUID]*simplescene.Node
	nodesByScene map[uuid.UUID][]uuid.UUID // scene_id -> []node_id in creation order
	attrs        map[uuid.UUID]map[string]*simplescene.Attribute
	attrOrder    map[uuid.UUID][]string // node_id -> attribute names in creation order
	conns        []*simplescene.Connection
	nextSeq      int64
}

// New creates a new in-memory repository
func New() simplescene.Repository {
	return &Repository{
		scenes:       make(map[uuid.UUID]*simplescene.Scene),
		nodes:        make(map[uuid.UUID]*simplescene.Node),
		nodesByScene: make(map[uuid.UUID][]uuid.UUID),
		attrs:        make(map[uuid.UUID]map[string]*simplescene.Attribute),
		attrOrder:    make(map[uuid.UUID][]string),
		nextSeq:      1,
	}
}

// Scene operations

func (r *Repository) CreateScene(ctx context.Context, scene *simplescene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.scenes {
		if existing.Name == scene.Name {
			return simplescene.ErrSceneExists
		}
	}

	// Create a copy to avoid external modifications
	sceneCopy := *scene
	r.scenes[scene.ID] = &sceneCopy
	r.sceneOrder = append(r.sceneOrder, scene.ID)

	return nil
}

func (r *Repository) GetScene(ctx context.Context, id uuid.UUID) (*simplescene.Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scene, exists := r.scenes[id]
	if !exists {
		return nil, simplescene.ErrSceneNotFound
	}

	// Return a copy to prevent external modifications
	sceneCopy := *scene
	return &sceneCopy, nil
}

func (r *Repository) GetSceneByName(ctx context.Context, name string) (*simplescene.Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.sceneOrder {
		if scene := r.scenes[id]; scene.Name == name {
			sceneCopy := *scene
			return &sceneCopy, nil
		}
	}
	return nil, simplescene.ErrSceneNotFound
}

func (r *Repository) ListScenes(ctx context.Context) ([]*simplescene.Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplescene.Scene, 0, len(r.sceneOrder))
	for _, id := range r.sceneOrder {
		sceneCopy := *r.scenes[id]
		result = append(result, &sceneCopy)
	}
	return result, nil
}

func (r *Repository) DeleteScene(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenes[id]; !exists {
		return simplescene.ErrSceneNotFound
	}

	// Cascade: nodes, their attributes, and every edge touching them
	removed := make(map[uuid.UUID]bool)
	for _, nodeID := range r.nodesByScene[id] {
		removed[nodeID] = true
		delete(r.nodes, nodeID)
		delete(r.attrs, nodeID)
		delete(r.attrOrder, nodeID)
	}
	delete(r.nodesByScene, id)

	if len(removed) > 0 {
		var kept []*simplescene.Connection
		for _, c := range r.conns {
			if removed[c.SourceID] || removed[c.TargetID] {
				continue
			}
			kept = append(kept, c)
		}
		r.conns = kept
	}

	delete(r.scenes, id)
	for i, sid := range r.sceneOrder {
		if sid == id {
			r.sceneOrder = append(r.sceneOrder[:i], r.sceneOrder[i+1:]...)
			break
		}
	}

	return nil
}

// Node operations

func (r *Repository) CreateNode(ctx context.Context, node *simplescene.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenes[node.SceneID]; !exists {
		return simplescene.ErrSceneNotFound
	}
	for _, siblingID := range r.nodesByScene[node.SceneID] {
		if r.nodes[siblingID].Name == node.Name {
			return simplescene.ErrNodeExists
		}
	}

	// Create a copy to avoid external modifications
	nodeCopy := *node
	r.nodes[node.ID] = &nodeCopy
	r.nodesByScene[node.SceneID] = append(r.nodesByScene[node.SceneID], node.ID)

	return nil
}

func (r *Repository) GetNode(ctx context.Context, id uuid.UUID) (*simplescene.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[id]
	if !exists {
		return nil, simplescene.ErrNodeNotFound
	}

	// Return a copy to prevent external modifications
	nodeCopy := *node
	return &nodeCopy, nil
}

func (r *Repository) GetNodeByName(ctx context.Context, sceneID uuid.UUID, name string) (*simplescene.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.scenes[sceneID]; !exists {
		return nil, simplescene.ErrSceneNotFound
	}
	for _, nodeID := range r.nodesByScene[sceneID] {
		if node := r.nodes[nodeID]; node.Name == name {
			nodeCopy := *node
			return &nodeCopy, nil
		}
	}
	return nil, simplescene.ErrNodeNotFound
}

func (r *Repository) ListNodes(ctx context.Context, sceneID uuid.UUID) ([]*simplescene.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.scenes[sceneID]; !exists {
		return nil, simplescene.ErrSceneNotFound
	}

	nodeIDs := r.nodesByScene[sceneID]
	result := make([]*simplescene.Node, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		nodeCopy := *r.nodes[nodeID]
		result = append(result, &nodeCopy)
	}
	return result, nil
}

func (r *Repository) UpdateNode(ctx context.Context, node *simplescene.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.nodes[node.ID]
	if !exists {
		return simplescene.ErrNodeNotFound
	}
	if node.Name != existing.Name {
		for _, siblingID := range r.nodesByScene[existing.SceneID] {
			if siblingID != node.ID && r.nodes[siblingID].Name == node.Name {
				return simplescene.ErrNodeExists
			}
		}
	}

	// A node never moves between scenes; membership and creation time survive
	nodeCopy := *node
	nodeCopy.SceneID = existing.SceneID
	nodeCopy.CreatedAt = existing.CreatedAt
	r.nodes[node.ID] = &nodeCopy

	return nil
}

func (r *Repository) DeleteNode(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, exists := r.nodes[id]
	if !exists {
		return simplescene.ErrNodeNotFound
	}

	delete(r.nodes, id)
	delete(r.attrs, id)
	delete(r.attrOrder, id)

	siblings := r.nodesByScene[node.SceneID]
	for i, nodeID := range siblings {
		if nodeID == id {
			r.nodesByScene[node.SceneID] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}

	// Edges in either direction go with the node
	var kept []*simplescene.Connection
	for _, c := range r.conns {
		if c.SourceID == id || c.TargetID == id {
			continue
		}
		kept = append(kept, c)
	}
	r.conns = kept

	return nil
}

// Attribute operations

func (r *Repository) HasAttribute(ctx context.Context, nodeID uuid.UUID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return false, simplescene.ErrNodeNotFound
	}
	_, exists := r.attrs[nodeID][name]
	return exists, nil
}

func (r *Repository) CreateAttribute(ctx context.Context, attr *simplescene.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[attr.NodeID]; !exists {
		return simplescene.ErrNodeNotFound
	}
	if _, exists := r.attrs[attr.NodeID][attr.Name]; exists {
		return simplescene.ErrAttributeExists
	}

	if r.attrs[attr.NodeID] == nil {
		r.attrs[attr.NodeID] = make(map[string]*simplescene.Attribute)
	}

	// Create a copy to avoid external modifications
	attrCopy := *attr
	r.attrs[attr.NodeID][attr.Name] = &attrCopy
	r.attrOrder[attr.NodeID] = append(r.attrOrder[attr.NodeID], attr.Name)

	return nil
}

func (r *Repository) GetAttribute(ctx context.Context, nodeID uuid.UUID, name string) (*simplescene.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}
	attr, exists := r.attrs[nodeID][name]
	if !exists {
		return nil, simplescene.ErrAttributeNotFound
	}

	// Return a copy to prevent external modifications
	attrCopy := *attr
	return &attrCopy, nil
}

func (r *Repository) SetAttribute(ctx context.Context, attr *simplescene.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[attr.NodeID]; !exists {
		return simplescene.ErrNodeNotFound
	}
	existing, exists := r.attrs[attr.NodeID][attr.Name]
	if !exists {
		return simplescene.ErrAttributeNotFound
	}

	// The stored type and creation time survive value writes
	attrCopy := *attr
	attrCopy.Type = existing.Type
	attrCopy.CreatedAt = existing.CreatedAt
	r.attrs[attr.NodeID][attr.Name] = &attrCopy

	return nil
}

func (r *Repository) ListAttributes(ctx context.Context, nodeID uuid.UUID) ([]*simplescene.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}

	names := r.attrOrder[nodeID]
	result := make([]*simplescene.Attribute, 0, len(names))
	for _, name := range names {
		attrCopy := *r.attrs[nodeID][name]
		result = append(result, &attrCopy)
	}
	return result, nil
}

func (r *Repository) DeleteAttribute(ctx context.Context, nodeID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return simplescene.ErrNodeNotFound
	}
	if _, exists := r.attrs[nodeID][name]; !exists {
		return simplescene.ErrAttributeNotFound
	}

	delete(r.attrs[nodeID], name)
	names := r.attrOrder[nodeID]
	for i, n := range names {
		if n == name {
			r.attrOrder[nodeID] = append(names[:i], names[i+1:]...)
			break
		}
	}

	// Inbound edges of the slot go with it
	var kept []*simplescene.Connection
	for _, c := range r.conns {
		if c.TargetID == nodeID && c.TargetAttr == name {
			continue
		}
		kept = append(kept, c)
	}
	r.conns = kept

	return nil
}

// Connection operations

func (r *Repository) Connect(ctx context.Context, sourceID, targetID uuid.UUID, targetAttr string) (*simplescene.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[sourceID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}
	if _, exists := r.nodes[targetID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}
	if _, exists := r.attrs[targetID][targetAttr]; !exists {
		return nil, simplescene.ErrAttributeNotFound
	}

	// Identical edges collapse onto the existing one
	for _, c := range r.conns {
		if c.SourceID == sourceID && c.TargetID == targetID && c.TargetAttr == targetAttr {
			connCopy := *c
			return &connCopy, nil
		}
	}

	conn := &simplescene.Connection{
		ID:         uuid.New(),
		SourceID:   sourceID,
		TargetID:   targetID,
		TargetAttr: targetAttr,
		Seq:        r.nextSeq,
		CreatedAt:  time.Now().UTC(),
	}
	r.nextSeq++
	r.conns = append(r.conns, conn)

	connCopy := *conn
	return &connCopy, nil
}

func (r *Repository) Disconnect(ctx context.Context, targetID uuid.UUID, targetAttr string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[targetID]; !exists {
		return 0, simplescene.ErrNodeNotFound
	}

	removed := 0
	var kept []*simplescene.Connection
	for _, c := range r.conns {
		if c.TargetID == targetID && c.TargetAttr == targetAttr {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.conns = kept

	return removed, nil
}

func (r *Repository) ListConnections(ctx context.Context, targetID uuid.UUID, targetAttr string) ([]*simplescene.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.nodes[targetID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}

	var result []*simplescene.Connection
	for _, c := range r.conns {
		if c.TargetID == targetID && c.TargetAttr == targetAttr {
			connCopy := *c
			result = append(result, &connCopy)
		}
	}
	return result, nil
}

func (r *Repository) ListNodeConnections(ctx context.Context, nodeID uuid.UUID) ([]*simplescene.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return nil, simplescene.ErrNodeNotFound
	}

	var result []*simplescene.Connection
	for _, c := range r.conns {
		if c.SourceID == nodeID || c.TargetID == nodeID {
			connCopy := *c
			result = append(result, &connCopy)
		}
	}
	return result, nil
}

// Admin operations

func (r *Repository) ListNodesWithFilters(ctx context.Context, filters simplescene.NodeListFilters) ([]*simplescene.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	countFilters := simplescene.NodeCountFilters{
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

	var result []*simplescene.Node
	for _, node := range r.allNodesLocked() {
		if matchesFilters(node, countFilters) {
			nodeCopy := *node
			result = append(result, &nodeCopy)
		}
	}

	sortBy := "created_at"
	if filters.SortBy != nil && *filters.SortBy != "" {
		sortBy = *filters.SortBy
	}
	ascending := func(i, j int) bool {
		switch sortBy {
		case "name":
			return result[i].Name < result[j].Name
		case "updated_at":
			return result[i].UpdatedAt.Before(result[j].UpdatedAt)
		default:
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
	}

	// Sort by created_at descending unless asked otherwise
	desc := true
	if filters.SortOrder != nil {
		desc = strings.EqualFold(*filters.SortOrder, "desc")
	}
	if desc {
		sort.Slice(result, func(i, j int) bool { return ascending(j, i) })
	} else {
		sort.Slice(result, ascending)
	}

	// Apply limit and offset
	if filters.Offset != nil && *filters.Offset > 0 {
		if *filters.Offset >= len(result) {
			return []*simplescene.Node{}, nil
		}
		result = result[*filters.Offset:]
	}
	if filters.Limit != nil && *filters.Limit > 0 && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	return result, nil
}

func (r *Repository) CountNodesWithFilters(ctx context.Context, filters simplescene.NodeCountFilters) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, node := range r.allNodesLocked() {
		if matchesFilters(node, filters) {
			count++
		}
	}
	return count, nil
}

func (r *Repository) GetNodeStatistics(ctx context.Context, filters simplescene.NodeCountFilters, options simplescene.NodeStatisticsOptions) (*simplescene.NodeStatisticsResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := &simplescene.NodeStatisticsResult{}
	if options.IncludeKindBreakdown {
		result.ByKind = make(map[string]int64)
	}
	if options.IncludeSceneBreakdown {
		result.ByScene = make(map[string]int64)
	}
	if options.IncludeAttrTypeBreakdown {
		result.ByAttrType = make(map[string]int64)
	}

	matched := make(map[uuid.UUID]bool)
	for _, node := range r.allNodesLocked() {
		if !matchesFilters(node, filters) {
			continue
		}
		matched[node.ID] = true
		result.TotalCount++

		if result.ByKind != nil {
			result.ByKind[node.Kind]++
		}
		if result.ByScene != nil {
			key := node.SceneID.String()
			if scene, ok := r.scenes[node.SceneID]; ok {
				key = scene.Name
			}
			result.ByScene[key]++
		}
		if result.ByAttrType != nil {
			for _, attr := range r.attrs[node.ID] {
				result.ByAttrType[string(attr.Type)]++
			}
		}
		if options.IncludeTimeRange {
			created := node.CreatedAt
			if result.OldestNode == nil || created.Before(*result.OldestNode) {
				result.OldestNode = &created
			}
			if result.NewestNode == nil || created.After(*result.NewestNode) {
				result.NewestNode = &created
			}
		}
	}

	if options.IncludeConnectionCount {
		for _, c := range r.conns {
			if matched[c.TargetID] {
				result.ConnectionCount++
			}
		}
	}

	return result, nil
}

// allNodesLocked returns every node in scene order then creation order.
// Callers must hold at least a read lock.
func (r *Repository) allNodesLocked() []*simplescene.Node {
	var nodes []*simplescene.Node
	for _, sceneID := range r.sceneOrder {
		for _, nodeID := range r.nodesByScene[sceneID] {
			nodes = append(nodes, r.nodes[nodeID])
		}
	}
	return nodes
}

// matchesFilters applies the shared filter fields to a single node
func matchesFilters(node *simplescene.Node, f simplescene.NodeCountFilters) bool {
	if f.SceneID != nil && node.SceneID != *f.SceneID {
		return false
	}
	if len(f.SceneIDs) > 0 {
		found := false
		for _, id := range f.SceneIDs {
			if node.SceneID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Kind != nil && !strings.EqualFold(node.Kind, *f.Kind) {
		return false
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, kind := range f.Kinds {
			if strings.EqualFold(node.Kind, kind) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.NamePrefix != nil && !strings.HasPrefix(node.Name, *f.NamePrefix) {
		return false
	}
	if f.CreatedAfter != nil && node.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && node.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	if f.UpdatedAfter != nil && node.UpdatedAt.Before(*f.UpdatedAfter) {
		return false
	}
	if f.UpdatedBefore != nil && node.UpdatedAt.After(*f.UpdatedBefore) {
		return false
	}
	return true
}
