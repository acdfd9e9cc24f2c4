package job

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/handle"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/observability"
	"github.com/kbukum/whisperbridge/params"
	"github.com/kbukum/whisperbridge/scheduler"
	"github.com/kbukum/whisperbridge/transcript"
)

// Job kinds.
const (
	KindStandalone = "standalone"
	KindConfidence = "confidence"
	KindBound      = "bound"
)

// Job runs one transcription and delivers a result of type R.
type Job[R any] struct {
	kind    string
	params  params.Descriptor
	eng     engine.Engine
	source  contextSource
	extract func(engine.Context) R
	done    func(error, R)

	lane      string
	preflight func() error

	verbose bool
	log     *logger.Logger

	result R
}

var (
	_ scheduler.Task        = (*Job[transcript.SegmentResult])(nil)
	_ scheduler.Preflighter = (*Job[transcript.SegmentResult])(nil)
	_ scheduler.Laned       = (*Job[transcript.SegmentResult])(nil)
	_ scheduler.Kinded      = (*Job[transcript.SegmentResult])(nil)
)

// Option configures a Job.
type Option func(*options)

type options struct {
	verbose bool
	log     *logger.Logger
}

// WithVerbose logs engine system info and stage timings at debug level.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// WithLogger replaces the job logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func newJob[R any](kind string, eng engine.Engine, p params.Descriptor, src contextSource,
	extract func(engine.Context) R, done func(error, R), opts []Option) *Job[R] {
	o := options{log: logger.Get("job")}
	for _, opt := range opts {
		opt(&o)
	}
	return &Job[R]{
		kind:    kind,
		params:  p,
		eng:     eng,
		source:  src,
		extract: extract,
		done:    done,
		verbose: o.verbose,
		log:     o.log,
	}
}

// NewStandalone creates a job that loads the descriptor's model, transcribes
// and frees the context.
func NewStandalone(eng engine.Engine, p params.Descriptor, done func(error, transcript.SegmentResult), opts ...Option) *Job[transcript.SegmentResult] {
	src := ownedSource{eng: eng, modelPath: p.ModelPath()}
	return newJob(KindStandalone, eng, p, src, transcript.ReadSegments, done, opts)
}

// NewConfidence is NewStandalone reporting per-token probabilities.
func NewConfidence(eng engine.Engine, p params.Descriptor, done func(error, transcript.TokenConfidenceResult), opts ...Option) *Job[transcript.TokenConfidenceResult] {
	src := ownedSource{eng: eng, modelPath: p.ModelPath()}
	return newJob(KindConfidence, eng, p, src, transcript.ReadTokens, done, opts)
}

// NewBound creates a job that runs on h's context. The job is tied to the
// handle's current generation and ignores the descriptor's model.
func NewBound(h *handle.Handle, p params.Descriptor, done func(error, transcript.SegmentResult), opts ...Option) *Job[transcript.SegmentResult] {
	src := borrowedSource{h: h, gen: h.Generation()}
	j := newJob(KindBound, h.Engine(), p, src, transcript.ReadSegments, done, opts)
	j.lane = h.ID()
	j.preflight = h.Ready
	return j
}

// Failed creates a job that completes with err without executing. It lets
// callers report bundle errors through the same completion path.
func Failed[R any](kind string, err error, done func(error, R)) *Job[R] {
	return &Job[R]{
		kind:      kind,
		done:      done,
		preflight: func() error { return err },
		log:       logger.Get("job"),
	}
}

func (j *Job[R]) Kind() string { return j.kind }

func (j *Job[R]) LaneKey() string { return j.lane }

// Preflight implements scheduler.Preflighter.
func (j *Job[R]) Preflight() error {
	if j.preflight == nil {
		return nil
	}
	return j.preflight()
}

// Execute implements scheduler.Task. It must be called at most once.
func (j *Job[R]) Execute(ctx context.Context) error {
	if j.source == nil {
		if err := j.Preflight(); err != nil {
			return err
		}
		return apperrors.Internal(fmt.Errorf("%s job has no engine context", j.kind))
	}

	lang := j.params.Language()
	if !engine.LanguageSupported(j.eng, lang) {
		return apperrors.InvalidLanguage(lang)
	}

	start := time.Now()
	c, release, err := j.source.acquire()
	if err != nil {
		return err
	}
	defer release()
	acquired := time.Now()

	if j.verbose {
		j.logSystemInfo(c)
	}

	if status := j.params.RunOn(c); status != 0 {
		return apperrors.EngineRunFailed(status)
	}
	ran := time.Now()

	j.result = j.extract(c)

	observability.SetSpanAttribute(ctx, "samples", j.params.SampleCount())
	observability.SetSpanAttribute(ctx, "segments", c.SegmentCount())
	if j.verbose {
		j.log.Debug("Job stages", logger.Fields(
			logger.FieldJobKind, j.kind,
			logger.FieldSamples, j.params.SampleCount(),
			logger.FieldSegments, c.SegmentCount(),
			"acquire_ms", acquired.Sub(start).Milliseconds(),
			"run_ms", ran.Sub(acquired).Milliseconds(),
			"extract_ms", time.Since(ran).Milliseconds(),
		))
	}
	return nil
}

func (j *Job[R]) logSystemInfo(c engine.Context) {
	info := "unavailable"
	if si, ok := c.(engine.SystemInfoer); ok {
		info = si.SystemInfo()
	}
	j.log.Debug("Engine run", logger.Fields(
		logger.FieldJobKind, j.kind,
		logger.FieldBackend, j.eng.Name(),
		"system_info", info,
		"threads", j.params.Threads(),
		"processors", j.params.Processors(),
		"language", j.params.Language(),
	))
}

// Complete implements scheduler.Task. The continuation gets the zero result
// on failure.
func (j *Job[R]) Complete(err error) {
	if j.done == nil {
		return
	}
	if err != nil {
		var zero R
		j.done(err, zero)
		return
	}
	j.done(nil, j.result)
}
