package params

import (
	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/util"
	"github.com/kbukum/whisperbridge/validation"
)

// ranges holds the fields with range constraints, named by bundle key.
type ranges struct {
	Threads    int `json:"threads" validate:"gt=0"`
	Processors int `json:"processors" validate:"gte=1"`
	OffsetMs   int `json:"offsetMs" validate:"gte=0"`
	DurationMs int `json:"durationMs" validate:"gte=0"`
	MaxLen     int `json:"maxLen" validate:"gte=0"`
}

// FromBundle builds a Descriptor from bundle. Absent keys take the values of
// Defaults. The audio buffer is copied, so the caller keeps ownership of its
// slice. It fails with INVALID_LANGUAGE when the language is neither "auto"
// nor known to langs, and with INVALID_INPUT for mistyped or out-of-range
// values.
func FromBundle(bundle map[string]any, langs LanguageChecker) (Descriptor, error) {
	d := Defaults()
	r := reader{bundle: bundle}

	r.text(KeyLanguage, &d.language)
	if r.err != nil {
		return Descriptor{}, r.err
	}
	if d.language != engine.AutoLanguage && langs.LanguageID(d.language) < 0 {
		return Descriptor{}, errors.InvalidLanguage(d.language)
	}

	r.text(KeyModel, &d.model)
	r.text(KeyPrompt, &d.prompt)
	r.integer(KeyThreads, &d.threads)
	r.integer(KeyProcessors, &d.processors)
	r.integer(KeyOffsetMs, &d.offsetMs)
	r.integer(KeyDurationMs, &d.durationMs)
	r.integer(KeyMaxContext, &d.maxContext)
	r.integer(KeyMaxLen, &d.maxLen)
	r.integer(KeyBestOf, &d.bestOf)
	r.integer(KeyBeamSize, &d.beamSize)
	r.number(KeyWordThreshold, &d.wordThreshold)
	r.number(KeyEntropyThreshold, &d.entropyThreshold)
	r.number(KeyLogprobThreshold, &d.logprobThreshold)
	r.flag(KeySpeedUp, &d.speedUp)
	r.flag(KeyTranslate, &d.translate)
	r.flag(KeyDiarize, &d.diarize)
	r.flag(KeyWordTimestamps, &d.wordTimestamps)
	r.flag(KeyPrintSpecial, &d.printSpecial)
	r.flag(KeyPrintProgress, &d.printProgress)
	r.flag(KeyNoTimestamps, &d.noTimestamps)
	r.audio(KeyAudioData, &d.samples)
	if r.err != nil {
		return Descriptor{}, r.err
	}

	if err := validation.Validate(ranges{
		Threads:    d.threads,
		Processors: d.processors,
		OffsetMs:   d.offsetMs,
		DurationMs: d.durationMs,
		MaxLen:     d.maxLen,
	}); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// reader coerces bundle values and keeps the first failure.
type reader struct {
	bundle map[string]any
	err    error
}

func (r *reader) lookup(key string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.bundle[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *reader) fail(key string, err error) {
	r.err = errors.InvalidInput(key, key+": "+err.Error())
}

func (r *reader) text(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		s, err := util.ToString(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = s
	}
}

func (r *reader) integer(key string, dst *int) {
	if v, ok := r.lookup(key); ok {
		n, err := util.ToInt(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = n
	}
}

func (r *reader) number(key string, dst *float32) {
	if v, ok := r.lookup(key); ok {
		f, err := util.ToFloat(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = float32(f)
	}
}

func (r *reader) flag(key string, dst *bool) {
	if v, ok := r.lookup(key); ok {
		b, err := util.ToBool(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = b
	}
}

func (r *reader) audio(key string, dst *[]float32) {
	if v, ok := r.lookup(key); ok {
		s, err := util.ToFloat32Slice(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = s
	}
}
