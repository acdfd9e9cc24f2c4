package loop

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/whisperbridge/component"
	"github.com/kbukum/whisperbridge/logger"
)

// EventLoop serializes callbacks onto one goroutine. Post never blocks: the
// queue is unbounded because completions must not be dropped once a job has
// run.
type EventLoop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	started bool

	notify chan struct{}
	done   chan struct{}
	log    *logger.Logger
}

var _ component.Component = (*EventLoop)(nil)

// New creates a stopped event loop.
func New() *EventLoop {
	return &EventLoop{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		log:    logger.Get("loop"),
	}
}

// Name implements component.Component.
func (l *EventLoop) Name() string { return "event-loop" }

// Start launches the loop goroutine.
func (l *EventLoop) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return fmt.Errorf("event loop already started")
	}
	if l.closed {
		return fmt.Errorf("event loop already stopped")
	}
	l.started = true
	go l.run()
	return nil
}

// Post queues fn to run on the loop goroutine. It returns false once the loop
// is stopping; fn is then never called.
func (l *EventLoop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of callbacks waiting to run.
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Stop refuses new posts, runs everything already queued and waits for the
// loop goroutine to exit or ctx to expire.
func (l *EventLoop) Stop(ctx context.Context) error {
	l.mu.Lock()
	wasStarted := l.started
	if !l.closed {
		l.closed = true
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
	l.mu.Unlock()

	if !wasStarted {
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event loop drain: %w", ctx.Err())
	}
}

// Health implements component.Component.
func (l *EventLoop) Health(_ context.Context) component.Health {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := component.Health{Name: l.Name(), Status: component.StatusHealthy}
	switch {
	case l.closed:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	case !l.started:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

func (l *EventLoop) run() {
	defer close(l.done)
	for {
		batch, closed := l.take()
		for _, fn := range batch {
			l.invoke(fn)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-l.notify
	}
}

func (l *EventLoop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch, l.closed
}

func (l *EventLoop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Callback panicked", logger.Fields("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
