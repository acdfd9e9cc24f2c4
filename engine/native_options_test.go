package engine

import (
	"errors"
	"testing"
	"time"
)

// recordingSetter mimics the bindings context: SetLanguage fails on an
// English-only model, whatever the language.
type recordingSetter struct {
	multilingual bool
	language     string
	languageSet  bool
	threads      uint
	offset       time.Duration
	maxLen       uint
	maxContext   int
	beamSize     int
	prompt       string
}

func (r *recordingSetter) IsMultilingual() bool { return r.multilingual }

func (r *recordingSetter) SetLanguage(code string) error {
	if !r.multilingual {
		return errors.New("model is not multilingual")
	}
	if code != AutoLanguage && LookupLanguage(code) < 0 {
		return errors.New("unsupported language")
	}
	r.language = code
	r.languageSet = true
	return nil
}

func (r *recordingSetter) SetThreads(n uint) { r.threads = n }

func (r *recordingSetter) SetTranslate(bool) {}

func (r *recordingSetter) SetOffset(d time.Duration) { r.offset = d }

func (r *recordingSetter) SetDuration(time.Duration) {}

func (r *recordingSetter) SetTokenTimestamps(bool) {}

func (r *recordingSetter) SetTokenThreshold(float32) {}

func (r *recordingSetter) SetMaxSegmentLength(n uint) { r.maxLen = n }

func (r *recordingSetter) SetEntropyThold(float32) {}

func (r *recordingSetter) SetMaxContext(n int) { r.maxContext = n }

func (r *recordingSetter) SetBeamSize(n int) { r.beamSize = n }

func (r *recordingSetter) SetInitialPrompt(prompt string) { r.prompt = prompt }

func TestApplyRunConfig_Language(t *testing.T) {
	tests := []struct {
		name         string
		multilingual bool
		language     string
		wantErr      error
		wantSet      bool
	}{
		{"english-only en", false, "en", nil, false},
		{"english-only english", false, "english", nil, false},
		{"english-only auto", false, AutoLanguage, nil, false},
		{"english-only de", false, "de", ErrEnglishOnlyModel, false},
		{"multilingual de", true, "de", nil, true},
		{"multilingual auto", true, AutoLanguage, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &recordingSetter{multilingual: tc.multilingual, maxContext: -2}
			err := applyRunConfig(s, RunConfig{Language: tc.language, Threads: 2})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.languageSet != tc.wantSet {
				t.Errorf("languageSet = %v, want %v", s.languageSet, tc.wantSet)
			}
			if s.threads != 2 {
				t.Errorf("expected 2 threads, got %d", s.threads)
			}
		})
	}
}

func TestApplyRunConfig_Mapping(t *testing.T) {
	s := &recordingSetter{multilingual: true, maxContext: -2, beamSize: -2}
	cfg := RunConfig{
		Language:         "fr",
		Threads:          0,
		OffsetMs:         1500,
		MaxSegmentLength: -3,
		MaxTextContext:   -1,
		Strategy:         Greedy,
		BeamSize:         5,
		InitialPrompt:    "hello",
	}
	if err := applyRunConfig(s, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.threads != 1 {
		t.Errorf("threads should be clamped to 1, got %d", s.threads)
	}
	if s.offset != 1500*time.Millisecond {
		t.Errorf("unexpected offset %v", s.offset)
	}
	if s.maxLen != 0 {
		t.Errorf("negative max length should clamp to 0, got %d", s.maxLen)
	}
	if s.maxContext != -2 {
		t.Error("negative max context should leave the engine default")
	}
	if s.beamSize != -2 {
		t.Error("greedy decoding should not set a beam size")
	}
	if s.prompt != "hello" {
		t.Errorf("unexpected prompt %q", s.prompt)
	}

	cfg.Strategy = BeamSearch
	if err := applyRunConfig(s, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.beamSize != 5 {
		t.Errorf("expected beam size 5, got %d", s.beamSize)
	}
}

func TestUnsupportedOptions(t *testing.T) {
	defaults := RunConfig{LogprobThreshold: -1, BestOf: 2}
	if got := unsupportedOptions(defaults); len(got) != 0 {
		t.Errorf("defaults should report nothing, got %v", got)
	}
	got := unsupportedOptions(RunConfig{LogprobThreshold: -0.5, BestOf: 5, SpeedUp: true, PrintSpecial: true})
	for _, key := range []string{"logprob_threshold", "best_of", "speed_up", "print_special"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected %s to be reported", key)
		}
	}
}
