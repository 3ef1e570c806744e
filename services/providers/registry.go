package providers

import (
	"errors"
	"sort"
)

var (
	// ErrEngineNotFound is returned when an engine is not registered
	ErrEngineNotFound = errors.New("engine not found")

	// ErrEngineAlreadyRegistered is returned when trying to register a duplicate engine
	ErrEngineAlreadyRegistered = errors.New("engine already registered")
)

// Binding pairs an engine with the model used when a request names none
type Binding struct {
	Engine       Engine
	DefaultModel string
}

// Registry maps engine selectors to their bindings. It is populated during
// startup and only read afterwards, so it carries no lock.
type Registry struct {
	bindings map[string]Binding
}

// NewRegistry creates a new engine registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
	}
}

// Register registers an engine under its Name with a default model
func (r *Registry) Register(engine Engine, defaultModel string) error {
	if engine == nil {
		return errors.New("engine cannot be nil")
	}

	name := engine.Name()
	if name == "" {
		return errors.New("engine name cannot be empty")
	}
	if defaultModel == "" {
		return errors.New("default model cannot be empty")
	}

	if _, exists := r.bindings[name]; exists {
		return ErrEngineAlreadyRegistered
	}

	r.bindings[name] = Binding{Engine: engine, DefaultModel: defaultModel}
	return nil
}

// Lookup retrieves a binding by exact, case-sensitive name
func (r *Registry) Lookup(name string) (Binding, error) {
	binding, exists := r.bindings[name]
	if !exists {
		return Binding{}, ErrEngineNotFound
	}
	return binding, nil
}

// Names returns all registered engine names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModels returns the default model of every registered engine
func (r *Registry) DefaultModels() map[string]string {
	out := make(map[string]string, len(r.bindings))
	for name, b := range r.bindings {
		out[name] = b.DefaultModel
	}
	return out
}

// Count returns the number of registered engines
func (r *Registry) Count() int {
	return len(r.bindings)
}

// idleCloser is implemented by engines that hold pooled connections
type idleCloser interface {
	CloseIdleConnections()
}

// CloseIdleConnections releases pooled connections held by any engine
func (r *Registry) CloseIdleConnections() {
	for _, b := range r.bindings {
		if c, ok := b.Engine.(idleCloser); ok {
			c.CloseIdleConnections()
		}
	}
}
