package simplescene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-scene/pkg/simplescene/scenekey"
)

// service implements the Service interface
type service struct {
	repository   Repository
	archives     map[string]ArchiveStore
	eventSink    EventSink
	hooks        *Hooks
	keyGenerator scenekey.Generator
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithArchiveStore adds a scene archive storage backend
func WithArchiveStore(name string, store ArchiveStore) Option {
	return func(s *service) {
		if s.archives == nil {
			s.archives = make(map[string]ArchiveStore)
		}
		s.archives[name] = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithHooks sets the lifecycle hooks for the service
func WithHooks(hooks *Hooks) Option {
	return func(s *service) {
		s.hooks = hooks
	}
}

// WithKeyGenerator sets the archive key generator for the service
func WithKeyGenerator(gen scenekey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = gen
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		archives: make(map[string]ArchiveStore),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.keyGenerator == nil {
		s.keyGenerator = scenekey.NewFlatGenerator()
	}

	return s, nil
}

// Scene operations

func (s *service) CreateScene(ctx context.Context, req CreateSceneRequest) (*Scene, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scene := &Scene{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateScene(ctx, scene); err != nil {
		return nil, &SceneError{
			SceneID: scene.ID,
			Op:      "create",
			Err:     err,
		}
	}

	return scene, nil
}

func (s *service) GetScene(ctx context.Context, id uuid.UUID) (*Scene, error) {
	return s.repository.GetScene(ctx, id)
}

func (s *service) GetSceneByName(ctx context.Context, name string) (*Scene, error) {
	return s.repository.GetSceneByName(ctx, name)
}

func (s *service) ListScenes(ctx context.Context) ([]*Scene, error) {
	return s.repository.ListScenes(ctx)
}

func (s *service) DeleteScene(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteScene(ctx, id); err != nil {
		return &SceneError{
			SceneID: id,
			Op:      "delete",
			Err:     err,
		}
	}
	return nil
}

// Node operations

func (s *service) CreateNode(ctx context.Context, req CreateNodeRequest) (*Node, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}

	if s.hooks != nil {
		if err := s.hooks.executeBeforeNodeCreate(ctx, &req); err != nil {
			return nil, &NodeError{Op: "create", Err: err}
		}
	}

	now := time.Now().UTC()
	node := &Node{
		ID:        uuid.New(),
		SceneID:   req.SceneID,
		Name:      req.Name,
		Kind:      NormalizeKind(req.Kind),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateNode(ctx, node); err != nil {
		s.fireError(ctx, "create node", err)
		return nil, &NodeError{
			NodeID: node.ID,
			Op:     "create",
			Err:    err,
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.NodeCreated(ctx, node); err != nil {
			// Log error but don't fail the operation
		}
	}

	if s.hooks != nil {
		if err := s.hooks.executeAfterNodeCreate(ctx, node); err != nil {
			return nil, &NodeError{NodeID: node.ID, Op: "create", Err: err}
		}
	}

	return node, nil
}

func (s *service) GetNode(ctx context.Context, id uuid.UUID) (*Node, error) {
	return s.repository.GetNode(ctx, id)
}

func (s *service) GetNodeByName(ctx context.Context, sceneID uuid.UUID, name string) (*Node, error) {
	return s.repository.GetNodeByName(ctx, sceneID, name)
}

func (s *service) ListNodes(ctx context.Context, sceneID uuid.UUID) ([]*Node, error) {
	return s.repository.ListNodes(ctx, sceneID)
}

func (s *service) UpdateNode(ctx context.Context, req UpdateNodeRequest) (*Node, error) {
	if req.Node == nil {
		return nil, &NodeError{Op: "update", Err: fmt.Errorf("node is required")}
	}
	if err := ValidateName(req.Node.Name); err != nil {
		return nil, err
	}

	req.Node.Kind = NormalizeKind(req.Node.Kind)
	req.Node.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateNode(ctx, req.Node); err != nil {
		return nil, &NodeError{
			NodeID: req.Node.ID,
			Op:     "update",
			Err:    err,
		}
	}

	return req.Node, nil
}

func (s *service) DeleteNode(ctx context.Context, id uuid.UUID) error {
	if s.hooks != nil {
		if err := s.hooks.executeBeforeNodeDelete(ctx, id); err != nil {
			return &NodeError{NodeID: id, Op: "delete", Err: err}
		}
	}

	if err := s.repository.DeleteNode(ctx, id); err != nil {
		s.fireError(ctx, "delete node", err)
		return &NodeError{
			NodeID: id,
			Op:     "delete",
			Err:    err,
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.NodeDeleted(ctx, id); err != nil {
			// Log error but don't fail the operation
		}
	}

	if s.hooks != nil {
		if err := s.hooks.executeAfterNodeDelete(ctx, id); err != nil {
			return &NodeError{NodeID: id, Op: "delete", Err: err}
		}
	}

	return nil
}

// Attribute operations

func (s *service) HasAttribute(ctx context.Context, nodeID uuid.UUID, name string) (bool, error) {
	return s.repository.HasAttribute(ctx, nodeID, name)
}

func (s *service) GetAttribute(ctx context.Context, nodeID uuid.UUID, name string) (*Attribute, error) {
	return s.repository.GetAttribute(ctx, nodeID, name)
}

func (s *service) ListAttributes(ctx context.Context, nodeID uuid.UUID) ([]*Attribute, error) {
	return s.repository.ListAttributes(ctx, nodeID)
}

func (s *service) EnsureAttribute(ctx context.Context, nodeID uuid.UUID, name string, typ AttrType) (*Attribute, error) {
	if !typ.Valid() {
		return nil, &AttributeError{NodeID: nodeID, Attr: name, Op: "ensure", Err: ErrInvalidAttrType}
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	attr, err := s.repository.GetAttribute(ctx, nodeID, name)
	if err == nil {
		return attr, nil
	}
	if !errors.Is(err, ErrAttributeNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	attr = &Attribute{
		NodeID:    nodeID,
		Name:      name,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateAttribute(ctx, attr); err != nil {
		// Lost a creation race; the existing attribute wins.
		if errors.Is(err, ErrAttributeExists) {
			return s.repository.GetAttribute(ctx, nodeID, name)
		}
		return nil, &AttributeError{
			NodeID: nodeID,
			Attr:   name,
			Op:     "ensure",
			Err:    err,
		}
	}

	// Fire event
	if s.eventSink != nil {
		if err := s.eventSink.AttributeSet(ctx, attr); err != nil {
			// Log error but don't fail the operation
		}
	}

	return attr, nil
}

func (s *service) EnsureMessage(ctx context.Context, nodeID uuid.UUID, name string) (*Attribute, error) {
	return s.EnsureAttribute(ctx, nodeID, name, AttrTypeMessage)
}

func (s *service) DeleteAttribute(ctx context.Context, nodeID uuid.UUID, name string) error {
	if err := s.repository.DeleteAttribute(ctx, nodeID, name); err != nil {
		return &AttributeError{
			NodeID: nodeID,
			Attr:   name,
			Op:     "delete",
			Err:    err,
		}
	}
	return nil
}

// Archive store operations

func (s *service) RegisterArchive(name string, store ArchiveStore) {
	if s.archives == nil {
		s.archives = make(map[string]ArchiveStore)
	}
	s.archives[name] = store
}

func (s *service) GetArchive(name string) (ArchiveStore, error) {
	store, exists := s.archives[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrArchiveStoreNotFound, name)
	}
	return store, nil
}

// archiveStore resolves a registered archive store by name. An empty name is
// allowed when exactly one store is registered.
func (s *service) archiveStore(name string) (ArchiveStore, string, error) {
	if name == "" {
		if len(s.archives) == 1 {
			for n, store := range s.archives {
				return store, n, nil
			}
		}
		return nil, "", ErrArchiveStoreNotFound
	}

	store, ok := s.archives[name]
	if !ok {
		return nil, name, ErrArchiveStoreNotFound
	}
	return store, name, nil
}

func (s *service) fireError(ctx context.Context, operation string, err error) {
	if s.hooks != nil {
		s.hooks.executeOnError(ctx, operation, err)
	}
}
