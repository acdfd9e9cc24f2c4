package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/whisperbridge/component"
	apperrors "github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/observability"
)

// entry is one accepted task.
type entry struct {
	id        string
	kind      string
	lane      string
	task      Task
	submitted time.Time
	once      sync.Once
}

// lane serializes the tasks sharing a key. The worker running the active
// task takes the next pending one itself.
type lane struct {
	pending []*entry
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers  int `json:"workers"`
	Capacity int `json:"capacity"`
	Queued   int `json:"queued"`
	Running  int `json:"running"`
	Lanes    int `json:"lanes"`
}

// Scheduler is a bounded worker pool with per-lane serialization.
type Scheduler struct {
	cfg     Config
	poster  Poster
	metrics *observability.Metrics
	log     *logger.Logger

	mu      sync.Mutex
	ready   chan *entry
	lanes   map[string]*lane
	queued  int
	running int
	started bool
	closed  bool

	wg sync.WaitGroup
}

var _ component.Component = (*Scheduler)(nil)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics records job metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithLogger replaces the scheduler's logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler that posts completions to poster. Workers start
// with Start; tasks submitted before that wait in the queue.
func New(cfg Config, poster Poster, opts ...Option) *Scheduler {
	cfg.ApplyDefaults()
	s := &Scheduler{
		cfg:    cfg,
		poster: poster,
		log:    logger.Get("scheduler"),
		ready:  make(chan *entry, cfg.QueueSize),
		lanes:  make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements component.Component.
func (s *Scheduler) Name() string { return "scheduler" }

// Start launches the worker goroutines.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if s.closed {
		return fmt.Errorf("scheduler already stopped")
	}
	s.started = true

	s.wg.Add(s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		go s.work(i)
	}
	s.log.Info("Scheduler started", logger.Fields(
		"workers", s.cfg.Workers,
		"queue_size", s.cfg.QueueSize,
	))
	return nil
}

// Submit accepts t and returns its job id. It never blocks and never calls
// Complete on the calling goroutine.
func (s *Scheduler) Submit(t Task) string {
	e := &entry{
		id:        uuid.NewString(),
		kind:      kindOf(t),
		lane:      laneOf(t),
		task:      t,
		submitted: time.Now(),
	}

	if p, ok := t.(Preflighter); ok {
		if err := p.Preflight(); err != nil {
			s.refuse(e, err)
			return e.id
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.refuse(e, apperrors.SchedulerClosed())
		return e.id
	}
	if s.queued >= s.cfg.QueueSize {
		s.mu.Unlock()
		s.refuse(e, apperrors.QueueFull(s.cfg.QueueSize))
		return e.id
	}
	s.queued++
	s.enqueue(e)
	depth := s.queued
	s.mu.Unlock()

	s.metrics.RecordSubmitted(context.Background(), e.kind)
	s.log.Debug("Job submitted", logger.Fields(
		logger.FieldJobID, e.id,
		logger.FieldJobKind, e.kind,
		logger.FieldQueueDepth, depth,
	))
	return e.id
}

// enqueue places e on the ready channel or behind its lane's active task.
// The ready channel holds at most queued entries, so the send never blocks.
// Callers hold s.mu.
func (s *Scheduler) enqueue(e *entry) {
	if e.lane != "" {
		if l, busy := s.lanes[e.lane]; busy {
			l.pending = append(l.pending, e)
			return
		}
		s.lanes[e.lane] = &lane{}
	}
	s.ready <- e
}

// next pops the following task of a lane, or retires the lane. Callers hold
// s.mu.
func (s *Scheduler) next(key string) *entry {
	if key == "" {
		return nil
	}
	l := s.lanes[key]
	if l == nil || len(l.pending) == 0 {
		delete(s.lanes, key)
		return nil
	}
	e := l.pending[0]
	l.pending = l.pending[1:]
	return e
}

func (s *Scheduler) work(worker int) {
	defer s.wg.Done()
	log := s.log.WithFields(logger.Fields(logger.FieldWorker, worker))

	for e := range s.ready {
		for e != nil {
			s.run(log, e)

			s.mu.Lock()
			e = s.next(e.lane)
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) run(log *logger.Logger, e *entry) {
	s.mu.Lock()
	s.queued--
	s.running++
	s.mu.Unlock()

	ctx := context.Background()
	s.metrics.RecordDequeued(ctx, e.kind, time.Since(e.submitted))

	ctx, op := observability.StartOperation(ctx, e.kind, e.id, s.metrics)
	err := s.execute(ctx, e)
	status := op.End(ctx, err)

	s.mu.Lock()
	s.running--
	s.mu.Unlock()

	fields := logger.Fields(
		logger.FieldJobID, e.id,
		logger.FieldJobKind, e.kind,
		logger.FieldStatus, status,
		logger.FieldDuration, op.Duration().Milliseconds(),
	)
	if err != nil {
		log.WithError(err).Warn("Job failed", fields)
	} else {
		log.Debug("Job executed", fields)
	}

	s.deliver(e, err)
}

// execute runs the task, turning a panic into an INTERNAL_ERROR outcome.
func (s *Scheduler) execute(ctx context.Context, e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Internal(fmt.Errorf("job panicked: %v", r))
		}
	}()
	return e.task.Execute(ctx)
}

func (s *Scheduler) refuse(e *entry, err error) {
	status := observability.StatusFor(err)
	s.metrics.RecordRejected(context.Background(), e.kind, status)
	s.log.Debug("Job refused", logger.Fields(
		logger.FieldJobID, e.id,
		logger.FieldJobKind, e.kind,
		logger.FieldErrorCode, status,
	))
	s.deliver(e, err)
}

// deliver posts the completion of e exactly once.
func (s *Scheduler) deliver(e *entry, err error) {
	e.once.Do(func() {
		if !s.poster.Post(func() { e.task.Complete(err) }) {
			s.log.Error("Completion dropped, event loop stopped", logger.Fields(
				logger.FieldJobID, e.id,
				logger.FieldJobKind, e.kind,
			))
		}
	})
}

// Stop refuses new submissions, lets workers finish every accepted task and
// waits for them or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ready)
	started := s.started
	remaining := s.queued
	s.mu.Unlock()

	if !started {
		s.failUnstarted()
		return nil
	}

	s.log.Info("Scheduler draining", logger.Fields(logger.FieldQueueDepth, remaining))

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DrainTimeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler drain: %w", ctx.Err())
	}
}

// failUnstarted completes tasks accepted by a scheduler that never started.
func (s *Scheduler) failUnstarted() {
	var refused []*entry
	for e := range s.ready {
		refused = append(refused, e)
	}

	s.mu.Lock()
	for key, l := range s.lanes {
		refused = append(refused, l.pending...)
		delete(s.lanes, key)
	}
	s.queued = 0
	s.mu.Unlock()

	for _, e := range refused {
		s.metrics.RecordDequeued(context.Background(), e.kind, time.Since(e.submitted))
		s.refuse(e, apperrors.SchedulerClosed())
	}
}

// Stats returns the current pool counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Workers:  s.cfg.Workers,
		Capacity: s.cfg.QueueSize,
		Queued:   s.queued,
		Running:  s.running,
		Lanes:    len(s.lanes),
	}
}

// Health implements component.Component. The pool is degraded once the queue
// is at least 90% full.
func (s *Scheduler) Health(_ context.Context) component.Health {
	st := s.Stats()

	s.mu.Lock()
	started, closed := s.started, s.closed
	s.mu.Unlock()

	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	switch {
	case closed:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	case !started:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	case st.Queued*10 >= st.Capacity*9:
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("queue %d/%d", st.Queued, st.Capacity)
	}
	return h
}
