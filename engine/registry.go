package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/whisperbridge/logger"
)

// Backend names known to the default registry.
const (
	BackendStub       = "stub"
	BackendWhisperCPP = "whispercpp"
)

// ErrBackendUnavailable indicates the backend is registered but not compiled in.
var ErrBackendUnavailable = errors.New("engine: backend not available in this build")

// Factory creates an Engine from configuration.
type Factory func(cfg Config) (Engine, error)

// Registry manages named engine factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// DefaultBackend returns "whispercpp" when it is compiled in and "stub"
// otherwise.
func DefaultBackend() string {
	if NativeAvailable() {
		return BackendWhisperCPP
	}
	return BackendStub
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the stub and whisper.cpp backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFactory(BackendStub, func(Config) (Engine, error) { return NewStub(), nil })
	r.RegisterFactory(BackendWhisperCPP, func(Config) (Engine, error) { return NewNative() })
	return r
}

// RegisterFactory registers a named factory for creating engines.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates an engine using the named factory.
func (r *Registry) Create(name string, cfg Config) (Engine, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("engine backend %q not registered", name)
	}
	return factory(cfg)
}

// List returns sorted names of all registered factories.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve creates the configured backend, falling back to the stub when
// cfg.FallbackToStub is set and the backend cannot be created.
func (r *Registry) Resolve(cfg Config) (Engine, error) {
	log := logger.Get("engine")
	eng, err := r.Create(cfg.Backend, cfg)
	if err == nil {
		log.Info("engine backend ready", logger.Fields(logger.FieldBackend, eng.Name()))
		return eng, nil
	}
	if !cfg.FallbackToStub || cfg.Backend == BackendStub {
		return nil, err
	}
	log.Warn("engine backend unavailable; using stub", logger.Fields(
		logger.FieldBackend, cfg.Backend,
		logger.FieldError, err.Error(),
	))
	return r.Create(BackendStub, cfg)
}
