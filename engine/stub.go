package engine

import (
	"fmt"
	"math"
	"strings"
)

// SampleRate is the number of samples per second the engine expects.
const SampleRate = 16000

// Stub is a deterministic backend that needs no model weights. It emits one
// segment per second of audio so the bridge can run end to end without
// whisper.cpp.
type Stub struct{}

// NewStub returns the stub backend.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) Name() string { return BackendStub }

func (s *Stub) LanguageID(code string) int { return LookupLanguage(code) }

// Init fails only for an empty model path.
func (s *Stub) Init(modelPath string) Context {
	if strings.TrimSpace(modelPath) == "" {
		return nil
	}
	return &stubContext{model: modelPath}
}

type stubSegment struct {
	start, end int64
	words      []string
	probs      []float32
}

type stubContext struct {
	model    string
	segments []stubSegment
}

func (c *stubContext) Run(cfg RunConfig, samples []float32, _ int) int {
	c.segments = c.segments[:0]
	base := int64(cfg.OffsetMs / 10)
	for i := 0; i*SampleRate < len(samples); i++ {
		chunk := samples[i*SampleRate : min((i+1)*SampleRate, len(samples))]
		words := []string{" [stub]", " segment", fmt.Sprintf(" %d", i)}
		if cfg.Translate {
			words = append([]string{" (translated)"}, words...)
		}
		p := confidence(chunk)
		probs := make([]float32, len(words))
		for j := range probs {
			probs[j] = p
		}
		c.segments = append(c.segments, stubSegment{
			start: base + int64(i*SampleRate)*100/SampleRate,
			end:   base + int64(i*SampleRate+len(chunk))*100/SampleRate,
			words: words,
			probs: probs,
		})
	}
	return 0
}

// confidence maps the chunk's RMS level into [0.5, 0.99].
func confidence(chunk []float32) float32 {
	var sum float64
	for _, v := range chunk {
		sum += float64(v) * float64(v)
	}
	rms := math.Sqrt(sum / float64(len(chunk)))
	return float32(0.5 + 0.49*math.Min(rms, 1))
}

func (c *stubContext) SegmentCount() int { return len(c.segments) }

func (c *stubContext) SegmentText(i int) string { return strings.Join(c.segments[i].words, "") }

func (c *stubContext) SegmentStart(i int) int64 { return c.segments[i].start }

func (c *stubContext) SegmentEnd(i int) int64 { return c.segments[i].end }

func (c *stubContext) TokenCount(segment int) int { return len(c.segments[segment].words) }

func (c *stubContext) TokenText(segment, token int) string { return c.segments[segment].words[token] }

func (c *stubContext) TokenProbability(segment, token int) float32 {
	return c.segments[segment].probs[token]
}

func (c *stubContext) SystemInfo() string { return "stub backend (model " + c.model + ")" }

func (c *stubContext) Free() { c.segments = nil }
