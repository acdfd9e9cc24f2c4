package bridge

import (
	"github.com/kbukum/whisperbridge/handle"
	"github.com/kbukum/whisperbridge/job"
	"github.com/kbukum/whisperbridge/params"
	"github.com/kbukum/whisperbridge/transcript"
)

// Worker keeps one model loaded for repeated transcriptions. Its jobs are
// serialized: a worker transcribes one bundle at a time, in submission order.
type Worker struct {
	b *Bridge
	h *handle.Handle
}

// NewWorker creates an uninitialized worker.
func (b *Bridge) NewWorker() *Worker {
	return &Worker{
		b: b,
		h: handle.New(b.eng, handle.WithMetrics(b.metrics)),
	}
}

func (w *Worker) ID() string { return w.h.ID() }

func (w *Worker) State() handle.State { return w.h.State() }

// ModelPath returns the loaded model, or "" when the worker is not ready.
func (w *Worker) ModelPath() string { return w.h.ModelPath() }

// Initialize loads the model. Relative names resolve against the models
// directory.
func (w *Worker) Initialize(modelPath string) error {
	return w.h.Initialize(w.b.ResolveModel(modelPath))
}

// Dispose releases the model. It is safe to call more than once.
func (w *Worker) Dispose() error {
	w.h.Dispose()
	return nil
}

// Transcribe submits a transcription on the worker's model and returns its
// job id. The bundle's model key is ignored.
func (w *Worker) Transcribe(bundle map[string]any, cb SegmentCallback) string {
	d, err := params.FromBundle(w.b.prepare(bundle), w.b.eng)
	if err != nil {
		return w.b.sched.Submit(job.Failed[transcript.SegmentResult](job.KindBound, err, cb))
	}
	return w.b.sched.Submit(job.NewBound(w.h, d, cb, w.b.jobOptions()...))
}
