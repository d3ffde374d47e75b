package simplescene

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Archive operations: a scene round-trips through a SceneDocument stored in
// an ArchiveStore. Export then import yields an equivalent scene under fresh
// IDs, with connections re-linked by node name.

func (s *service) ExportScene(ctx context.Context, req ExportSceneRequest) (*ArchiveInfo, error) {
	store, storeName, err := s.archiveStore(req.Archive)
	if err != nil {
		return nil, &ArchiveError{Store: req.Archive, Op: "export", Err: err}
	}

	scene, err := s.repository.GetScene(ctx, req.SceneID)
	if err != nil {
		return nil, err
	}

	doc, err := s.buildSceneDocument(ctx, scene)
	if err != nil {
		return nil, err
	}

	key := req.Key
	if key == "" {
		key = s.keyGenerator.GenerateKey(scene.ID, scene.Name, doc.ExportedAt)
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return nil, &ArchiveError{Store: storeName, Key: key, Op: "export", Err: err}
	}
	if err := store.Save(ctx, key, &buf); err != nil {
		return nil, &ArchiveError{Store: storeName, Key: key, Op: "export", Err: err}
	}

	info, err := store.Stat(ctx, key)
	if err != nil {
		return nil, &ArchiveError{Store: storeName, Key: key, Op: "export", Err: err}
	}
	return info, nil
}

func (s *service) ImportScene(ctx context.Context, req ImportSceneRequest) (*Scene, error) {
	store, storeName, err := s.archiveStore(req.Archive)
	if err != nil {
		return nil, &ArchiveError{Store: req.Archive, Key: req.Key, Op: "import", Err: err}
	}

	rc, err := store.Open(ctx, req.Key)
	if err != nil {
		return nil, &ArchiveError{Store: storeName, Key: req.Key, Op: "import", Err: err}
	}
	defer rc.Close()

	doc, err := DecodeSceneDocument(rc)
	if err != nil {
		return nil, &ArchiveError{Store: storeName, Key: req.Key, Op: "import", Err: err}
	}

	name := req.SceneName
	if name == "" {
		name = doc.Scene
	}

	scene, err := s.CreateScene(ctx, CreateSceneRequest{Name: name})
	if err != nil {
		return nil, err
	}

	nodesByName := make(map[string]*Node, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		node, err := s.CreateNode(ctx, CreateNodeRequest{
			SceneID: scene.ID,
			Name:    nd.Name,
			Kind:    nd.Kind,
		})
		if err != nil {
			return nil, err
		}
		nodesByName[nd.Name] = node

		now := time.Now().UTC()
		for _, ad := range nd.Attributes {
			if !ad.Type.Valid() {
				return nil, &ArchiveError{Store: storeName, Key: req.Key, Op: "import",
					Err: fmt.Errorf("%w: %q on node %q", ErrInvalidAttrType, ad.Type, nd.Name)}
			}
			attr := &Attribute{
				NodeID:      node.ID,
				Name:        ad.Name,
				Type:        ad.Type,
				StringValue: ad.StringValue,
				IntValue:    ad.IntValue,
				FloatValue:  ad.FloatValue,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repository.CreateAttribute(ctx, attr); err != nil {
				return nil, &AttributeError{NodeID: node.ID, Attr: ad.Name, Op: "import", Err: err}
			}
		}
	}

	for _, cd := range doc.Connections {
		source, ok := nodesByName[cd.Source]
		if !ok {
			return nil, &ArchiveError{Store: storeName, Key: req.Key, Op: "import",
				Err: fmt.Errorf("connection references unknown node %q", cd.Source)}
		}
		target, ok := nodesByName[cd.Target]
		if !ok {
			return nil, &ArchiveError{Store: storeName, Key: req.Key, Op: "import",
				Err: fmt.Errorf("connection references unknown node %q", cd.Target)}
		}

		// Hand-written documents may connect into a slot they never listed.
		has, err := s.repository.HasAttribute(ctx, target.ID, cd.TargetAttr)
		if err != nil {
			return nil, err
		}
		if !has {
			if _, err := s.EnsureMessage(ctx, target.ID, cd.TargetAttr); err != nil {
				return nil, err
			}
		}

		if err := s.connect(ctx, source.ID, target.ID, cd.TargetAttr); err != nil {
			return nil, err
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.SceneImported(ctx, scene); err != nil {
			// Log error but don't fail the operation
		}
	}

	return scene, nil
}

// buildSceneDocument walks the scene into its serialized form. Edges that
// cross scene boundaries are left out; the document describes one scene.
func (s *service) buildSceneDocument(ctx context.Context, scene *Scene) (*SceneDocument, error) {
	nodes, err := s.repository.ListNodes(ctx, scene.ID)
	if err != nil {
		return nil, err
	}

	doc := &SceneDocument{
		Version:    SceneDocumentVersion,
		Scene:      scene.Name,
		ExportedAt: time.Now().UTC(),
	}

	names := make(map[uuid.UUID]string, len(nodes))
	for _, node := range nodes {
		names[node.ID] = node.Name
	}

	var edges []*Connection
	seen := make(map[uuid.UUID]bool)

	for _, node := range nodes {
		attrs, err := s.repository.ListAttributes(ctx, node.ID)
		if err != nil {
			return nil, err
		}

		nd := NodeDocument{Name: node.Name, Kind: node.Kind}
		for _, a := range attrs {
			nd.Attributes = append(nd.Attributes, AttributeDocument{
				Name:        a.Name,
				Type:        a.Type,
				StringValue: a.StringValue,
				IntValue:    a.IntValue,
				FloatValue:  a.FloatValue,
			})
		}
		doc.Nodes = append(doc.Nodes, nd)

		conns, err := s.repository.ListNodeConnections(ctx, node.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range conns {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			if _, ok := names[c.SourceID]; !ok {
				continue
			}
			if _, ok := names[c.TargetID]; !ok {
				continue
			}
			edges = append(edges, c)
		}
	}

	sort.Slice(edges, func(i, j int) bool { return edges[i].Seq < edges[j].Seq })
	for _, c := range edges {
		doc.Connections = append(doc.Connections, ConnectionDocument{
			Source:     names[c.SourceID],
			Target:     names[c.TargetID],
			TargetAttr: c.TargetAttr,
		})
	}

	return doc, nil
}
