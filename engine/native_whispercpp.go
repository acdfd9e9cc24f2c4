//go:build whispercpp

package engine

import (
	"errors"
	"io"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/kbukum/whisperbridge/logger"
)

// runFailed is returned by Run when the bindings report an error.
const runFailed = -1

// NativeAvailable reports whether the whisper.cpp backend is compiled in.
func NativeAvailable() bool { return true }

// NewNative returns the whisper.cpp backend.
func NewNative() (Engine, error) {
	return &native{log: logger.Get("engine.whispercpp")}, nil
}

type native struct {
	log *logger.Logger
}

func (n *native) Name() string { return BackendWhisperCPP }

func (n *native) LanguageID(code string) int { return LookupLanguage(code) }

func (n *native) Init(modelPath string) Context {
	model, err := whisper.New(modelPath)
	if err != nil {
		n.log.Warn("model load failed", logger.Fields(logger.FieldModelPath, modelPath, logger.FieldError, err.Error()))
		return nil
	}
	wctx, err := model.NewContext()
	if err != nil {
		n.log.Warn("context creation failed", logger.Fields(logger.FieldModelPath, modelPath, logger.FieldError, err.Error()))
		_ = model.Close()
		return nil
	}
	return &nativeContext{model: model, ctx: wctx, log: n.log}
}

var _ runSetter = whisper.Context(nil)

type nativeContext struct {
	model    whisper.Model
	ctx      whisper.Context
	segments []whisper.Segment
	log      *logger.Logger
}

// Run applies cfg to the bindings context and processes samples. The
// high-level bindings run a single processor, so processors only shows up in
// the debug log.
func (c *nativeContext) Run(cfg RunConfig, samples []float32, processors int) int {
	c.segments = c.segments[:0]
	if err := applyRunConfig(c.ctx, cfg); err != nil {
		c.log.Warn("run configuration rejected", logger.Fields(logger.FieldError, err.Error()))
		return runFailed
	}
	if ignored := unsupportedOptions(cfg); len(ignored) > 0 {
		c.log.Debug("options not supported by the bindings were ignored", ignored)
	}
	c.log.Debug("processing", logger.Fields(
		logger.FieldSamples, len(samples),
		"threads", cfg.Threads,
		"processors", processors,
		"strategy", cfg.Strategy.String(),
	))

	var progress whisper.ProgressCallback
	if cfg.PrintProgress {
		progress = func(percent int) {
			c.log.Debug("progress", logger.Fields("percent", percent))
		}
	}
	if err := c.ctx.Process(samples, nil, nil, progress); err != nil {
		c.log.Warn("process failed", logger.Fields(logger.FieldError, err.Error()))
		return runFailed
	}
	for {
		seg, err := c.ctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.log.Warn("segment enumeration failed", logger.Fields(logger.FieldError, err.Error()))
			return runFailed
		}
		c.segments = append(c.segments, seg)
	}
	return 0
}

func (c *nativeContext) SegmentCount() int { return len(c.segments) }

func (c *nativeContext) SegmentText(i int) string { return c.segments[i].Text }

func (c *nativeContext) SegmentStart(i int) int64 { return centiseconds(c.segments[i].Start) }

func (c *nativeContext) SegmentEnd(i int) int64 { return centiseconds(c.segments[i].End) }

func (c *nativeContext) TokenCount(segment int) int { return len(c.segments[segment].Tokens) }

func (c *nativeContext) TokenText(segment, token int) string {
	return c.segments[segment].Tokens[token].Text
}

func (c *nativeContext) TokenProbability(segment, token int) float32 {
	return c.segments[segment].Tokens[token].P
}

func (c *nativeContext) SystemInfo() string { return c.ctx.SystemInfo() }

func (c *nativeContext) Free() {
	c.segments = nil
	if err := c.model.Close(); err != nil {
		c.log.Warn("model close failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func centiseconds(d time.Duration) int64 {
	return d.Milliseconds() / 10
}
