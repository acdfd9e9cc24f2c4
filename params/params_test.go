package params

import (
	"runtime"
	"testing"

	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/engine/enginetest"
	"github.com/kbukum/whisperbridge/errors"
)

func TestFromBundle_Defaults(t *testing.T) {
	d, err := FromBundle(map[string]any{}, engine.NewStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := min(4, runtime.NumCPU()); d.Threads() != want {
		t.Errorf("threads = %d, want %d", d.Threads(), want)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"processors", d.Processors(), 1},
		{"language", d.Language(), "en"},
		{"maxContext", d.MaxContext(), -1},
		{"maxLen", d.MaxLen(), 0},
		{"bestOf", d.BestOf(), 2},
		{"beamSize", d.BeamSize(), -1},
		{"wordThreshold", d.WordThreshold(), float32(0.01)},
		{"entropyThreshold", d.EntropyThreshold(), float32(2.40)},
		{"logprobThreshold", d.LogprobThreshold(), float32(-1.00)},
		{"translate", d.Translate(), false},
		{"noTimestamps", d.NoTimestamps(), false},
		{"prompt", d.Prompt(), ""},
		{"samples", d.SampleCount(), 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestFromBundle_ReadsEveryKey(t *testing.T) {
	d, err := FromBundle(map[string]any{
		KeyLanguage:         "de",
		KeyModel:            "/models/ggml-small.bin",
		KeyAudioData:        []any{0.1, -0.2},
		KeyThreads:          float64(8),
		KeyProcessors:       2,
		KeyOffsetMs:         1500,
		KeyDurationMs:       3000,
		KeyMaxContext:       64,
		KeyMaxLen:           20,
		KeyBestOf:           5,
		KeyBeamSize:         4,
		KeyWordThreshold:    0.2,
		KeyEntropyThreshold: 2.0,
		KeyLogprobThreshold: -0.5,
		KeySpeedUp:          true,
		KeyTranslate:        true,
		KeyDiarize:          true,
		KeyWordTimestamps:   true,
		KeyPrintSpecial:     true,
		KeyPrintProgress:    true,
		KeyNoTimestamps:     true,
		KeyPrompt:           "Glossary: ggml",
	}, engine.NewStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Language() != "de" || d.ModelPath() != "/models/ggml-small.bin" || d.Prompt() != "Glossary: ggml" {
		t.Errorf("unexpected strings: %q %q %q", d.Language(), d.ModelPath(), d.Prompt())
	}
	if d.Threads() != 8 || d.Processors() != 2 || d.OffsetMs() != 1500 || d.DurationMs() != 3000 {
		t.Errorf("unexpected ints: %d %d %d %d", d.Threads(), d.Processors(), d.OffsetMs(), d.DurationMs())
	}
	if d.MaxContext() != 64 || d.MaxLen() != 20 || d.BestOf() != 5 || d.BeamSize() != 4 {
		t.Errorf("unexpected tuning: %d %d %d %d", d.MaxContext(), d.MaxLen(), d.BestOf(), d.BeamSize())
	}
	if d.WordThreshold() != 0.2 || d.EntropyThreshold() != 2.0 || d.LogprobThreshold() != -0.5 {
		t.Errorf("unexpected thresholds: %v %v %v", d.WordThreshold(), d.EntropyThreshold(), d.LogprobThreshold())
	}
	if !d.SpeedUp() || !d.Translate() || !d.Diarize() || !d.WordTimestamps() || !d.PrintSpecial() || !d.PrintProgress() || !d.NoTimestamps() {
		t.Error("expected every flag to be set")
	}
	if d.SampleCount() != 2 {
		t.Errorf("expected 2 samples, got %d", d.SampleCount())
	}
}

func TestFromBundle_Language(t *testing.T) {
	tests := []struct {
		language string
		wantErr  bool
	}{
		{"en", false},
		{"auto", false},
		{"ja", false},
		{"japanese", false},
		{"xx-not-real", true},
		{"", true},
		{"EN", true},
		{" en ", true},
		{"English", true},
	}
	for _, tc := range tests {
		t.Run(tc.language, func(t *testing.T) {
			_, err := FromBundle(map[string]any{KeyLanguage: tc.language}, engine.NewStub())
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidLanguage) {
				t.Errorf("expected INVALID_LANGUAGE, got %v", err)
			}
		})
	}
}

func TestFromBundle_InvalidLanguageConsultsChecker(t *testing.T) {
	fake := &enginetest.Engine{}
	if _, err := FromBundle(map[string]any{KeyLanguage: "xx-not-real"}, fake); err == nil {
		t.Fatal("expected error")
	}
	if fake.LanguageLookups() != 1 {
		t.Errorf("expected one language lookup, got %d", fake.LanguageLookups())
	}
	if fake.Inits() != 0 || fake.Runs() != 0 {
		t.Error("building a descriptor must not touch the engine")
	}
}

func TestFromBundle_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		bundle map[string]any
		field  string
	}{
		{"threads not a number", map[string]any{KeyThreads: "four"}, KeyThreads},
		{"fractional threads", map[string]any{KeyThreads: 2.5}, KeyThreads},
		{"beam size overflows int", map[string]any{KeyBeamSize: 1e19}, KeyBeamSize},
		{"flag not a bool", map[string]any{KeyTranslate: "yes"}, KeyTranslate},
		{"audio not an array", map[string]any{KeyAudioData: "raw"}, KeyAudioData},
		{"language not a string", map[string]any{KeyLanguage: 7}, KeyLanguage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromBundle(tc.bundle, engine.NewStub())
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeInvalidInput {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if appErr.Details["field"] != tc.field {
				t.Errorf("expected field %q, got %v", tc.field, appErr.Details["field"])
			}
		})
	}
}

func TestFromBundle_RangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		bundle map[string]any
	}{
		{"zero threads", map[string]any{KeyThreads: 0}},
		{"zero processors", map[string]any{KeyProcessors: 0}},
		{"negative offset", map[string]any{KeyOffsetMs: -1}},
		{"negative max length", map[string]any{KeyMaxLen: -5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromBundle(tc.bundle, engine.NewStub())
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestFromBundle_NilValuesUseDefaults(t *testing.T) {
	d, err := FromBundle(map[string]any{KeyThreads: nil, KeyAudioData: nil}, engine.NewStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Processors() != 1 || d.SampleCount() != 0 {
		t.Errorf("expected defaults, got processors=%d samples=%d", d.Processors(), d.SampleCount())
	}
}

func TestFromBundle_SamplesDoNotAlias(t *testing.T) {
	audio := []float32{0.5, 0.25}
	d, err := FromBundle(map[string]any{KeyAudioData: audio}, engine.NewStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	audio[0] = 1
	if d.Samples()[0] != 0.5 {
		t.Error("descriptor aliases the caller's buffer")
	}
	out := d.Samples()
	out[1] = 1
	if d.Samples()[1] != 0.25 {
		t.Error("Samples must return a copy")
	}
}

func TestRunConfig(t *testing.T) {
	tests := []struct {
		name      string
		bundle    map[string]any
		strategy  engine.Strategy
		tokenTS   bool
		maxSegLen int
		printTS   bool
	}{
		{"defaults", map[string]any{}, engine.Greedy, false, 0, true},
		{"beam of one stays greedy", map[string]any{KeyBeamSize: 1}, engine.Greedy, false, 0, true},
		{"beam search", map[string]any{KeyBeamSize: 5}, engine.BeamSearch, false, 0, true},
		{"word timestamps default length", map[string]any{KeyWordTimestamps: true}, engine.Greedy, true, 60, true},
		{"word timestamps explicit length", map[string]any{KeyWordTimestamps: true, KeyMaxLen: 12}, engine.Greedy, true, 12, true},
		{"max length alone enables timestamps", map[string]any{KeyMaxLen: 30}, engine.Greedy, true, 30, true},
		{"no timestamps", map[string]any{KeyNoTimestamps: true}, engine.Greedy, false, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := FromBundle(tc.bundle, engine.NewStub())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cfg := d.RunConfig()
			if cfg.Strategy != tc.strategy {
				t.Errorf("strategy = %v, want %v", cfg.Strategy, tc.strategy)
			}
			if cfg.TokenTimestamps != tc.tokenTS {
				t.Errorf("token timestamps = %v, want %v", cfg.TokenTimestamps, tc.tokenTS)
			}
			if cfg.MaxSegmentLength != tc.maxSegLen {
				t.Errorf("max segment length = %d, want %d", cfg.MaxSegmentLength, tc.maxSegLen)
			}
			if cfg.PrintTimestamps != tc.printTS {
				t.Errorf("print timestamps = %v, want %v", cfg.PrintTimestamps, tc.printTS)
			}
			if cfg.PrintRealtime {
				t.Error("realtime printing must stay off")
			}
		})
	}
}

func TestRunConfig_PassThrough(t *testing.T) {
	d, err := FromBundle(map[string]any{
		KeyLanguage:         "fr",
		KeyThreads:          3,
		KeyBestOf:           7,
		KeyBeamSize:         3,
		KeyWordThreshold:    0.3,
		KeyEntropyThreshold: 2.8,
		KeyLogprobThreshold: -0.7,
		KeyMaxContext:       16,
		KeyPrompt:           "hello",
	}, engine.NewStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := d.RunConfig()
	if cfg.Language != "fr" || cfg.Threads != 3 || cfg.BestOf != 7 || cfg.BeamSize != 3 {
		t.Errorf("unexpected pass-through: %+v", cfg)
	}
	if cfg.WordThreshold != 0.3 || cfg.EntropyThreshold != 2.8 || cfg.LogprobThreshold != -0.7 {
		t.Errorf("unexpected thresholds: %+v", cfg)
	}
	if cfg.MaxTextContext != 16 || cfg.InitialPrompt != "hello" {
		t.Errorf("unexpected context or prompt: %+v", cfg)
	}
}

func TestRunOn_PassesSamplesAndProcessors(t *testing.T) {
	fake := &enginetest.Engine{}
	d, err := FromBundle(map[string]any{KeyProcessors: 2, KeyAudioData: []float32{1, 2, 3}}, fake)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := fake.Init("m")
	if status := d.RunOn(ctx); status != 0 {
		t.Fatalf("expected status 0, got %d", status)
	}
	if len(fake.RunConfigs()) != 1 {
		t.Errorf("expected one run, got %d", len(fake.RunConfigs()))
	}
}
