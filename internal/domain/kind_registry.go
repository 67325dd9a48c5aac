package domain

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ServiceFactory returns a fresh, zero-valued service of one kind. The
// returned value must be a pointer so encoded state can be decoded into
// it.
type ServiceFactory func() Service

// NodeFilterFactory returns a fresh, zero-valued node filter of one kind.
type NodeFilterFactory func() NodeFilter

// KindRegistry maps kind tags to implementations so descriptors can be
// rebuilt after crossing a process boundary. Registration normally
// happens at startup; lookups are safe for concurrent use.
type KindRegistry struct {
	mu       sync.RWMutex
	services map[ServiceKind]ServiceFactory
	filters  map[NodeFilterKind]NodeFilterFactory
}

// NewKindRegistry returns a registry with the built-in node filters
// registered.
func NewKindRegistry() *KindRegistry {
	r := &KindRegistry{
		services: make(map[ServiceKind]ServiceFactory),
		filters:  make(map[NodeFilterKind]NodeFilterFactory),
	}
	r.filters[NodeFilterNodeIDs] = func() NodeFilter { return &NodeIDFilter{} }
	r.filters[NodeFilterLabelSelector] = func() NodeFilter { return &LabelSelectorFilter{} }
	return r
}

func (r *KindRegistry) RegisterService(kind ServiceKind, factory ServiceFactory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("%w: service kind and factory are required", ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[kind]; ok {
		return fmt.Errorf("service kind %q: %w", kind, ErrAlreadyExists)
	}
	r.services[kind] = factory
	return nil
}

func (r *KindRegistry) RegisterNodeFilter(kind NodeFilterKind, factory NodeFilterFactory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("%w: node filter kind and factory are required", ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[kind]; ok {
		return fmt.Errorf("node filter kind %q: %w", kind, ErrAlreadyExists)
	}
	r.filters[kind] = factory
	return nil
}

// NewService rebuilds a service from its kind and encoded state. Kinds
// without a registered factory yield an [OpaqueService].
func (r *KindRegistry) NewService(kind ServiceKind, config json.RawMessage) (Service, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: service kind is required", ErrInvalidArgument)
	}
	r.mu.RLock()
	factory, ok := r.services[kind]
	r.mu.RUnlock()
	if !ok {
		return &OpaqueService{ServiceKind: kind, Config: cloneRaw(config)}, nil
	}
	svc := factory()
	if err := decodeConfig(config, svc); err != nil {
		return nil, fmt.Errorf("%w: service %q config: %v", ErrInvalidArgument, kind, err)
	}
	if svc.Kind() != kind {
		return nil, fmt.Errorf("%w: factory for service kind %q built kind %q", ErrInvalidArgument, kind, svc.Kind())
	}
	return svc, nil
}

// NewNodeFilter rebuilds a node filter from its kind and encoded state.
// Unlike services, unknown filter kinds are rejected: a filter that
// cannot be evaluated is useless to the engine.
func (r *KindRegistry) NewNodeFilter(kind NodeFilterKind, config json.RawMessage) (NodeFilter, error) {
	r.mu.RLock()
	factory, ok := r.filters[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported node filter kind %q", ErrInvalidArgument, kind)
	}
	f := factory()
	if err := decodeConfig(config, f); err != nil {
		return nil, fmt.Errorf("%w: node filter %q config: %v", ErrInvalidArgument, kind, err)
	}
	if f.Kind() != kind {
		return nil, fmt.Errorf("%w: factory for node filter kind %q built kind %q", ErrInvalidArgument, kind, f.Kind())
	}
	return f, nil
}

func decodeConfig(config json.RawMessage, into any) error {
	if len(config) == 0 || string(config) == "null" {
		return nil
	}
	return json.Unmarshal(config, into)
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
