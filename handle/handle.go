// Package handle owns a long-lived engine context that bound jobs borrow.
package handle

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/observability"
)

// State is the lifecycle state of a Handle.
type State int

const (
	Uninitialized State = iota
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// Handle wraps zero or one engine context. It is safe for concurrent use.
//
// Each successful Initialize starts a new generation. A bound job remembers
// the generation it was submitted against and fails with NOT_READY if the
// handle was disposed or re-initialized in the meantime.
type Handle struct {
	id      string
	eng     engine.Engine
	metrics *observability.Metrics
	log     *logger.Logger

	mu         sync.Mutex
	state      State
	ctx        engine.Context
	modelPath  string
	generation uint64
	borrowed   engine.Context
	retired    engine.Context
}

// Option configures a Handle.
type Option func(*Handle)

// WithMetrics records handle lifecycle metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handle) { h.metrics = m }
}

// New creates an uninitialized handle over eng.
func New(eng engine.Engine, opts ...Option) *Handle {
	h := &Handle{
		id:  uuid.NewString(),
		eng: eng,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logger.Get("handle").WithFields(logger.Fields(logger.FieldHandleID, h.id))
	return h
}

func (h *Handle) ID() string { return h.id }

// Engine returns the engine the handle creates contexts with.
func (h *Handle) Engine() engine.Engine { return h.eng }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ModelPath returns the model of the current generation, or "" when not ready.
func (h *Handle) ModelPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modelPath
}

func (h *Handle) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

// Ready returns NOT_READY unless the handle holds a context.
func (h *Handle) Ready() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Ready {
		return apperrors.NotReady(h.id, h.state.String())
	}
	return nil
}

// Initialize loads modelPath into a new context. A ready handle must be
// disposed first. On failure the handle keeps its previous state.
func (h *Handle) Initialize(modelPath string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == Ready {
		h.metrics.RecordHandleInitialized(context.Background(), string(apperrors.ErrCodeAlreadyInitialized))
		return apperrors.AlreadyInitialized(h.id)
	}

	c := h.eng.Init(modelPath)
	if c == nil {
		h.metrics.RecordHandleInitialized(context.Background(), string(apperrors.ErrCodeEngineInitFailed))
		h.log.Warn("Engine init failed", logger.Fields(logger.FieldModelPath, modelPath))
		return apperrors.EngineInitFailed(modelPath)
	}

	h.ctx = c
	h.modelPath = modelPath
	h.state = Ready
	h.generation++
	h.metrics.RecordHandleInitialized(context.Background(), observability.StatusOK)
	h.log.Info("Handle initialized", logger.Fields(
		logger.FieldModelPath, modelPath,
		logger.FieldBackend, h.eng.Name(),
		"generation", h.generation,
	))
	return nil
}

// Dispose frees the context. It is a no-op unless the handle is ready. A
// context still borrowed by a running job is freed when the job releases it.
func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Ready {
		return
	}
	c := h.ctx
	h.ctx = nil
	h.modelPath = ""
	h.state = Disposed

	if c == h.borrowed {
		h.retired = c
		h.log.Debug("Handle disposed while borrowed, free deferred")
	} else {
		c.Free()
	}
	h.metrics.RecordHandleDisposed(context.Background())
	h.log.Info("Handle disposed")
}

// Borrow lends the context of generation gen to one caller at a time. The
// returned release must be called once the caller is done; extra calls are
// ignored.
func (h *Handle) Borrow(gen uint64) (engine.Context, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Ready || h.generation != gen {
		return nil, nil, apperrors.NotReady(h.id, h.state.String())
	}
	if h.borrowed != nil {
		return nil, nil, apperrors.HandleBusy(h.id)
	}

	c := h.ctx
	h.borrowed = c
	var once sync.Once
	release := func() {
		once.Do(func() { h.release(c) })
	}
	return c, release, nil
}

func (h *Handle) release(c engine.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.borrowed == c {
		h.borrowed = nil
	}
	if h.retired == c {
		h.retired = nil
		c.Free()
		h.log.Debug("Deferred free completed")
	}
}
