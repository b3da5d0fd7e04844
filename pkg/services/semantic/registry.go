package semantic

import (
	"fmt"
	"sync"
)

// ClassifierFactory is a function type that creates a Classifier from a config path
type ClassifierFactory func(configPath string) (Classifier, error)

// Registry manages classifier backend factories
type Registry interface {
	// Register adds a new classifier backend factory
	Register(backend string, factory ClassifierFactory) error
	// Create instantiates a classifier for the specified backend using the provided config
	Create(backend, configPath string) (Classifier, error)
	// ListBackends returns a list of registered backends
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ClassifierFactory
}

// NewRegistry creates a new classifier registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]ClassifierFactory),
	}
}

func (r *registry) Register(backend string, factory ClassifierFactory) error {
	if backend == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[backend]; exists {
		return fmt.Errorf("backend %q is already registered", backend)
	}

	r.factories[backend] = factory
	return nil
}

func (r *registry) Create(backend, configPath string) (Classifier, error) {
	r.mu.RLock()
	factory, exists := r.factories[backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q is not registered", backend)
	}

	return factory(configPath)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]string, 0, len(r.factories))
	for backend := range r.factories {
		backends = append(backends, backend)
	}
	return backends
}
