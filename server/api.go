package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperbridge/bridge"
	"github.com/kbukum/whisperbridge/engine"
	apperrors "github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/transcript"
	"github.com/kbukum/whisperbridge/util"
	"github.com/kbukum/whisperbridge/validation"
)

// JobIDHeader carries the scheduler job id of a transcription response.
const JobIDHeader = "X-Job-Id"

// API serves the transcription and worker routes.
type API struct {
	bridge  *bridge.Bridge
	workers *bridge.Workers
	timeout time.Duration
	log     *logger.Logger
}

// NewAPI creates the route handlers. A zero timeout waits as long as the
// client stays connected.
func NewAPI(b *bridge.Bridge, workers *bridge.Workers, timeout time.Duration) *API {
	return &API{
		bridge:  b,
		workers: workers,
		timeout: timeout,
		log:     logger.Get("api"),
	}
}

// Register mounts the /v1 routes on r.
func (a *API) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/transcriptions", a.transcribe)
	v1.GET("/languages", a.listLanguages)
	v1.GET("/workers", a.listWorkers)
	v1.POST("/workers", a.createWorker)
	v1.POST("/workers/:id/transcriptions", a.transcribeWithWorker)
	v1.DELETE("/workers/:id", a.deleteWorker)
}

// TranscriptionResponse is the body of a successful segment transcription.
type TranscriptionResponse struct {
	JobID    string                   `json:"job_id"`
	Text     string                   `json:"text"`
	Segments transcript.SegmentResult `json:"segments"`
	Spans    []transcript.Span        `json:"spans"`
}

// ConfidenceResponse is the body of a successful token confidence transcription.
type ConfidenceResponse struct {
	JobID  string                           `json:"job_id"`
	Tokens transcript.TokenConfidenceResult `json:"tokens"`
}

// WorkerResponse describes one worker.
type WorkerResponse struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	ModelPath string `json:"model_path,omitempty"`
}

type createWorkerRequest struct {
	Model string `json:"model" validate:"omitempty,max=4096"`
}

func (a *API) transcribe(c *gin.Context) {
	bundle, err := decodeBundle(c.Request)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	withConfidence := false
	if raw := c.Query("confidence"); raw != "" {
		withConfidence, err = strconv.ParseBool(raw)
		if err != nil {
			RespondWithError(c, apperrors.InvalidInput("confidence", "must be a boolean"))
			return
		}
	}

	if withConfidence {
		id, tokens, err := await(c.Request.Context(), a, func(done func(error, transcript.TokenConfidenceResult)) string {
			return a.bridge.TranscribeWithConfidence(bundle, done)
		})
		c.Header(JobIDHeader, id)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, ConfidenceResponse{JobID: id, Tokens: tokens})
		return
	}

	id, segments, err := await(c.Request.Context(), a, func(done func(error, transcript.SegmentResult)) string {
		return a.bridge.Transcribe(bundle, done)
	})
	a.respondSegments(c, id, segments, err)
}

func (a *API) transcribeWithWorker(c *gin.Context) {
	wid, err := workerID(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	w, err := a.workers.Get(wid)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	bundle, err := decodeBundle(c.Request)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	id, segments, err := await(c.Request.Context(), a, func(done func(error, transcript.SegmentResult)) string {
		return w.Transcribe(bundle, done)
	})
	a.respondSegments(c, id, segments, err)
}

func (a *API) respondSegments(c *gin.Context, id string, segments transcript.SegmentResult, err error) {
	c.Header(JobIDHeader, id)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, TranscriptionResponse{
		JobID:    id,
		Text:     segments.Text(),
		Segments: segments,
		Spans:    transcript.Spans(segments),
	})
}

func (a *API) listWorkers(c *gin.Context) {
	ids := a.workers.IDs()
	out := make([]WorkerResponse, 0, len(ids))
	for _, id := range ids {
		if w, err := a.workers.Get(id); err == nil {
			out = append(out, describeWorker(w))
		}
	}
	RespondOK(c, gin.H{"workers": out})
}

func (a *API) createWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, err)
			return
		}
		RespondWithError(c, apperrors.InvalidInput("body", "expected {\"model\": string}").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		RespondWithError(c, err)
		return
	}

	w := a.bridge.NewWorker()
	if err := w.Initialize(req.Model); err != nil {
		a.log.WithContext(c.Request.Context()).Warn("Worker initialization failed", logger.Fields(
			logger.FieldWorker, w.ID(),
			logger.FieldError, err.Error(),
		))
		RespondWithError(c, err)
		return
	}
	a.workers.Add(w)
	a.log.WithContext(c.Request.Context()).Info("Worker created", logger.Fields(
		logger.FieldWorker, w.ID(),
		logger.FieldModelPath, w.ModelPath(),
	))
	RespondCreated(c, describeWorker(w))
}

func (a *API) listLanguages(c *gin.Context) {
	RespondOK(c, gin.H{"languages": engine.Languages()})
}

func (a *API) deleteWorker(c *gin.Context) {
	id, err := workerID(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if w, ok := a.workers.Remove(id); ok {
		_ = w.Dispose()
		a.log.WithContext(c.Request.Context()).Info("Worker disposed", logger.Fields(logger.FieldWorker, id))
	}
	RespondNoContent(c)
}

// workerID reads the :id path parameter. Worker ids are UUIDs.
func workerID(c *gin.Context) (string, error) {
	id, err := util.CanonicalUUID("id", c.Param("id"))
	if err != nil {
		return "", apperrors.InvalidInput("id", err.Error())
	}
	return id, nil
}

func describeWorker(w *bridge.Worker) WorkerResponse {
	return WorkerResponse{ID: w.ID(), State: w.State().String(), ModelPath: w.ModelPath()}
}

// decodeBundle reads a JSON object, keeping numbers as json.Number so
// integer keys are not rounded through float64.
func decodeBundle(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var bundle map[string]any
	if err := dec.Decode(&bundle); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apperrors.InvalidInput("body", "bundle must be a JSON object").WithCause(err)
	}
	if bundle == nil {
		return nil, apperrors.InvalidInput("body", "bundle must be a JSON object")
	}
	return bundle, nil
}

type outcome[R any] struct {
	err    error
	result R
}

// await submits a job and blocks until its completion or the request
// deadline. A completion that arrives after the deadline is discarded.
func await[R any](ctx context.Context, a *API, submit func(done func(error, R)) string) (string, R, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var abandoned atomic.Bool
	var jobID atomic.Value
	ch := make(chan outcome[R], 1)
	id := submit(func(err error, result R) {
		if abandoned.Load() {
			id, _ := jobID.Load().(string)
			a.log.Debug("Discarding late completion", logger.Fields(logger.FieldJobID, id))
			return
		}
		ch <- outcome[R]{err: err, result: result}
	})
	jobID.Store(id)

	select {
	case out := <-ch:
		return id, out.result, out.err
	case <-ctx.Done():
		abandoned.Store(true)
		var zero R
		select {
		case out := <-ch:
			return id, out.result, out.err
		default:
		}
		a.log.WithContext(ctx).Warn("Stopped waiting for job", logger.Fields(
			logger.FieldJobID, id,
			logger.FieldError, ctx.Err().Error(),
		))
		return id, zero, apperrors.Timeout("transcription").WithDetail("job_id", id)
	}
}
