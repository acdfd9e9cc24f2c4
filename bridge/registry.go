package bridge

import (
	"slices"
	"sync"

	apperrors "github.com/kbukum/whisperbridge/errors"
)

// Workers tracks live workers by id.
type Workers struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

// NewWorkers creates an empty registry.
func NewWorkers() *Workers {
	return &Workers{workers: make(map[string]*Worker)}
}

// Add registers w under its id.
func (r *Workers) Add(w *Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[w.ID()] = w
}

// Get returns the worker with id or a NOT_FOUND error.
func (r *Workers) Get(id string) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[id]
	if !ok {
		return nil, apperrors.NotFound("worker", id)
	}
	return w, nil
}

// Remove unregisters and returns the worker with id.
func (r *Workers) Remove(id string) (*Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	delete(r.workers, id)
	return w, ok
}

// IDs returns the registered ids in sorted order.
func (r *Workers) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Workers) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// DisposeAll disposes and unregisters every worker.
func (r *Workers) DisposeAll() {
	r.mu.Lock()
	workers := r.workers
	r.workers = make(map[string]*Worker)
	r.mu.Unlock()

	for _, w := range workers {
		_ = w.Dispose()
	}
}
