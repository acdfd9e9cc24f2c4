// Package params turns a caller's loosely typed configuration bundle into an
// immutable, validated Descriptor.
package params

import (
	"runtime"

	"github.com/kbukum/whisperbridge/engine"
)

// Bundle keys recognized by FromBundle.
const (
	KeyLanguage         = "language"
	KeyModel            = "model"
	KeyAudioData        = "audioData"
	KeyThreads          = "threads"
	KeyProcessors       = "processors"
	KeyOffsetMs         = "offsetMs"
	KeyDurationMs       = "durationMs"
	KeyMaxContext       = "maxContext"
	KeyMaxLen           = "maxLen"
	KeyBestOf           = "bestOf"
	KeyBeamSize         = "beamSize"
	KeyWordThreshold    = "wordThreshold"
	KeyEntropyThreshold = "entropyThreshold"
	KeyLogprobThreshold = "logprobThreshold"
	KeySpeedUp          = "speedUp"
	KeyTranslate        = "translate"
	KeyDiarize          = "diarize"
	KeyWordTimestamps   = "wordTimestamps"
	KeyPrintSpecial     = "printSpecial"
	KeyPrintProgress    = "printProgress"
	KeyNoTimestamps     = "noTimestamps"
	KeyPrompt           = "prompt"
)

// DefaultMaxSegmentLength applies when word timestamps are requested
// without an explicit maximum segment length.
const DefaultMaxSegmentLength = 60

// LanguageChecker resolves language codes. engine.Engine satisfies it.
type LanguageChecker interface {
	LanguageID(code string) int
}

// Descriptor is a validated job configuration. It is immutable once built
// and safe to read from any goroutine.
type Descriptor struct {
	threads          int
	processors       int
	language         string
	model            string
	samples          []float32
	offsetMs         int
	durationMs       int
	maxContext       int
	maxLen           int
	bestOf           int
	beamSize         int
	wordThreshold    float32
	entropyThreshold float32
	logprobThreshold float32
	speedUp          bool
	translate        bool
	diarize          bool
	wordTimestamps   bool
	printSpecial     bool
	printProgress    bool
	noTimestamps     bool
	prompt           string
}

// Defaults returns the descriptor used for keys absent from a bundle.
func Defaults() Descriptor {
	return Descriptor{
		threads:          min(4, runtime.NumCPU()),
		processors:       1,
		language:         "en",
		samples:          []float32{},
		maxContext:       -1,
		bestOf:           2,
		beamSize:         -1,
		wordThreshold:    0.01,
		entropyThreshold: 2.40,
		logprobThreshold: -1.00,
	}
}

func (d Descriptor) Threads() int { return d.threads }
func (d Descriptor) Processors() int { return d.processors }
func (d Descriptor) Language() string { return d.language }
func (d Descriptor) ModelPath() string { return d.model }
func (d Descriptor) OffsetMs() int { return d.offsetMs }
func (d Descriptor) DurationMs() int { return d.durationMs }
func (d Descriptor) MaxContext() int { return d.maxContext }
func (d Descriptor) MaxLen() int { return d.maxLen }
func (d Descriptor) BestOf() int { return d.bestOf }
func (d Descriptor) BeamSize() int { return d.beamSize }
func (d Descriptor) WordThreshold() float32 { return d.wordThreshold }
func (d Descriptor) EntropyThreshold() float32 { return d.entropyThreshold }
func (d Descriptor) LogprobThreshold() float32 { return d.logprobThreshold }
func (d Descriptor) SpeedUp() bool { return d.speedUp }
func (d Descriptor) Translate() bool { return d.translate }
// Diarize is carried for output writers; the engine run ignores it.
func (d Descriptor) Diarize() bool { return d.diarize }
func (d Descriptor) WordTimestamps() bool { return d.wordTimestamps }
func (d Descriptor) PrintSpecial() bool { return d.printSpecial }
func (d Descriptor) PrintProgress() bool { return d.printProgress }
func (d Descriptor) NoTimestamps() bool { return d.noTimestamps }
func (d Descriptor) Prompt() string { return d.prompt }

// SampleCount returns the number of audio samples.
func (d Descriptor) SampleCount() int { return len(d.samples) }

// Samples returns a copy of the audio samples.
func (d Descriptor) Samples() []float32 {
	out := make([]float32, len(d.samples))
	copy(out, d.samples)
	return out
}

// RunConfig translates the descriptor into the engine's run configuration.
func (d Descriptor) RunConfig() engine.RunConfig {
	strategy := engine.Greedy
	if d.beamSize > 1 {
		strategy = engine.BeamSearch
	}
	maxLen := d.maxLen
	if d.wordTimestamps && maxLen == 0 {
		maxLen = DefaultMaxSegmentLength
	}
	return engine.RunConfig{
		Strategy:         strategy,
		Threads:          d.threads,
		MaxTextContext:   d.maxContext,
		OffsetMs:         d.offsetMs,
		DurationMs:       d.durationMs,
		TokenTimestamps:  d.wordTimestamps || d.maxLen > 0,
		WordThreshold:    d.wordThreshold,
		EntropyThreshold: d.entropyThreshold,
		LogprobThreshold: d.logprobThreshold,
		MaxSegmentLength: maxLen,
		SpeedUp:          d.speedUp,
		BestOf:           d.bestOf,
		BeamSize:         d.beamSize,
		Translate:        d.translate,
		PrintRealtime:    false,
		PrintProgress:    d.printProgress,
		PrintTimestamps:  !d.noTimestamps,
		PrintSpecial:     d.printSpecial,
		Language:         d.language,
		InitialPrompt:    d.prompt,
	}
}

// RunOn runs the engine over the descriptor's samples without copying them.
func (d Descriptor) RunOn(ctx engine.Context) int {
	return ctx.Run(d.RunConfig(), d.samples, d.processors)
}
