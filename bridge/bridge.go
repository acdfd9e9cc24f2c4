// Package bridge is the caller-facing API of whisperbridge. It turns
// configuration bundles into jobs, submits them to the scheduler and creates
// workers that keep a model loaded across transcriptions.
//
// Every submission completes through its callback exactly once, on the event
// loop, including submissions whose bundle is rejected.
package bridge

import (
	"maps"
	"path/filepath"

	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/job"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/observability"
	"github.com/kbukum/whisperbridge/params"
	"github.com/kbukum/whisperbridge/scheduler"
	"github.com/kbukum/whisperbridge/transcript"
	"github.com/kbukum/whisperbridge/util"
)

// Submitter accepts tasks. *scheduler.Scheduler implements it.
type Submitter interface {
	Submit(t scheduler.Task) string
}

// SegmentCallback receives a segment transcription.
type SegmentCallback func(err error, result transcript.SegmentResult)

// ConfidenceCallback receives a token confidence transcription.
type ConfidenceCallback func(err error, result transcript.TokenConfidenceResult)

// Bridge submits transcriptions against one engine.
type Bridge struct {
	eng     engine.Engine
	sched   Submitter
	cfg     engine.Config
	metrics *observability.Metrics
	log     *logger.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithMetrics records handle metrics for workers created by the bridge.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// New creates a bridge. cfg supplies the default language and model and the
// directory relative model names resolve against.
func New(eng engine.Engine, sched Submitter, cfg engine.Config, opts ...Option) *Bridge {
	cfg.ApplyDefaults()
	b := &Bridge{
		eng:   eng,
		sched: sched,
		cfg:   cfg,
		log:   logger.Get("bridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Engine returns the engine jobs run on.
func (b *Bridge) Engine() engine.Engine { return b.eng }

// Transcribe submits a standalone transcription and returns its job id.
func (b *Bridge) Transcribe(bundle map[string]any, cb SegmentCallback) string {
	d, err := params.FromBundle(b.prepare(bundle), b.eng)
	if err != nil {
		return b.sched.Submit(job.Failed[transcript.SegmentResult](job.KindStandalone, err, cb))
	}
	return b.sched.Submit(job.NewStandalone(b.eng, d, cb, b.jobOptions()...))
}

// TranscribeWithConfidence submits a transcription reporting per-token
// probabilities and returns its job id.
func (b *Bridge) TranscribeWithConfidence(bundle map[string]any, cb ConfidenceCallback) string {
	d, err := params.FromBundle(b.prepare(bundle), b.eng)
	if err != nil {
		return b.sched.Submit(job.Failed[transcript.TokenConfidenceResult](job.KindConfidence, err, cb))
	}
	return b.sched.Submit(job.NewConfidence(b.eng, d, cb, b.jobOptions()...))
}

func (b *Bridge) jobOptions() []job.Option {
	return []job.Option{job.WithVerbose(b.cfg.Verbose)}
}

// prepare copies bundle, fills in the default language and model and
// resolves the model path. The caller's map is never modified.
func (b *Bridge) prepare(bundle map[string]any) map[string]any {
	out := make(map[string]any, len(bundle)+2)
	out[params.KeyLanguage] = b.cfg.DefaultLanguage
	out[params.KeyModel] = b.cfg.DefaultModel
	maps.Copy(out, bundle)

	if model, ok := out[params.KeyModel].(string); ok {
		out[params.KeyModel] = b.ResolveModel(model)
	}
	return out
}

// ResolveModel joins a relative model name with the models directory.
// Absolute paths are returned unchanged and an empty name selects the
// default model.
func (b *Bridge) ResolveModel(model string) string {
	model = util.Coalesce(model, b.cfg.DefaultModel)
	if filepath.IsAbs(model) || b.cfg.ModelsDir == "" {
		return model
	}
	return filepath.Join(b.cfg.ModelsDir, model)
}
