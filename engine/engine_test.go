package engine

import (
	"errors"
	"testing"
)

func TestLookupLanguage(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"en", 0},
		{"zh", 1},
		{"de", 2},
		{"german", 2},
		{"German", -1},
		{"EN", -1},
		{" fr ", -1},
		{"fr", 6},
		{"yue", 99},
		{"auto", -1},
		{"xx-not-real", -1},
		{"", -1},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			if got := LookupLanguage(tc.code); got != tc.want {
				t.Errorf("LookupLanguage(%q) = %d, want %d", tc.code, got, tc.want)
			}
		})
	}
}

func TestLanguages_CopyInIDOrder(t *testing.T) {
	table := Languages()
	if len(table) != 100 {
		t.Fatalf("expected 100 languages, got %d", len(table))
	}
	for i, l := range table {
		if LookupLanguage(l.Code) != i {
			t.Errorf("language %q at index %d resolves to %d", l.Code, i, LookupLanguage(l.Code))
		}
	}
	table[0].Code = "mutated"
	if Languages()[0].Code != "en" {
		t.Error("Languages should return a copy")
	}
}

func TestLanguageSupported(t *testing.T) {
	s := NewStub()
	if !LanguageSupported(s, AutoLanguage) {
		t.Error("auto sentinel should be supported")
	}
	if !LanguageSupported(s, "ja") {
		t.Error("ja should be supported")
	}
	if LanguageSupported(s, "klingon") {
		t.Error("klingon should not be supported")
	}
}

func TestStrategy_String(t *testing.T) {
	if Greedy.String() != "greedy" || BeamSearch.String() != "beam_search" {
		t.Errorf("unexpected strategy names %q %q", Greedy.String(), BeamSearch.String())
	}
}

func TestStub_InitRequiresPath(t *testing.T) {
	s := NewStub()
	if s.Init("") != nil {
		t.Error("expected nil context for empty model path")
	}
	if s.Init("models/ggml-base.en.bin") == nil {
		t.Error("expected context for non-empty model path")
	}
}

func TestStub_SegmentsPerSecond(t *testing.T) {
	ctx := NewStub().Init("model.bin")
	defer ctx.Free()

	samples := make([]float32, SampleRate*2+SampleRate/2)
	if status := ctx.Run(RunConfig{OffsetMs: 1000}, samples, 1); status != 0 {
		t.Fatalf("expected status 0, got %d", status)
	}
	if ctx.SegmentCount() != 3 {
		t.Fatalf("expected 3 segments, got %d", ctx.SegmentCount())
	}
	wantBounds := [][2]int64{{100, 200}, {200, 300}, {300, 350}}
	for i, want := range wantBounds {
		if ctx.SegmentStart(i) != want[0] || ctx.SegmentEnd(i) != want[1] {
			t.Errorf("segment %d: got [%d, %d], want %v", i, ctx.SegmentStart(i), ctx.SegmentEnd(i), want)
		}
	}
	if ctx.SegmentText(1) != " [stub] segment 1" {
		t.Errorf("unexpected segment text %q", ctx.SegmentText(1))
	}
	if ctx.TokenCount(0) != 3 {
		t.Errorf("expected 3 tokens, got %d", ctx.TokenCount(0))
	}
	if p := ctx.TokenProbability(0, 0); p != 0.5 {
		t.Errorf("expected silent audio to score 0.5, got %v", p)
	}
}

func TestStub_EmptyAudio(t *testing.T) {
	ctx := NewStub().Init("model.bin")
	if status := ctx.Run(RunConfig{}, nil, 1); status != 0 {
		t.Fatalf("expected status 0, got %d", status)
	}
	if ctx.SegmentCount() != 0 {
		t.Errorf("expected no segments, got %d", ctx.SegmentCount())
	}
}

func TestRegistry_CreateAndList(t *testing.T) {
	r := DefaultRegistry()
	names := r.List()
	if len(names) != 2 || names[0] != BackendStub || names[1] != BackendWhisperCPP {
		t.Errorf("unexpected backends %v", names)
	}

	eng, err := r.Create(BackendStub, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.Name() != BackendStub {
		t.Errorf("expected stub engine, got %q", eng.Name())
	}

	if _, err := r.Create("missing", Config{}); err == nil {
		t.Error("expected error for unregistered backend")
	}
}

func TestRegistry_ResolveFallback(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(BackendStub, func(Config) (Engine, error) { return NewStub(), nil })
	r.RegisterFactory("broken", func(Config) (Engine, error) { return nil, ErrBackendUnavailable })

	if _, err := r.Resolve(Config{Backend: "broken"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable without fallback, got %v", err)
	}

	eng, err := r.Resolve(Config{Backend: "broken", FallbackToStub: true})
	if err != nil {
		t.Fatalf("unexpected error with fallback: %v", err)
	}
	if eng.Name() != BackendStub {
		t.Errorf("expected fallback to stub, got %q", eng.Name())
	}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Backend != DefaultBackend() {
		t.Errorf("expected default backend %q, got %q", DefaultBackend(), cfg.Backend)
	}
	if !NativeAvailable() && cfg.Backend != BackendStub {
		t.Errorf("expected stub without native support, got %q", cfg.Backend)
	}
	if _, err := DefaultRegistry().Resolve(cfg); err != nil {
		t.Errorf("default config should resolve, got %v", err)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("expected default language en, got %q", cfg.DefaultLanguage)
	}
	if cfg.DefaultModel != "ggml-base.en.bin" {
		t.Errorf("expected default model ggml-base.en.bin, got %q", cfg.DefaultModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	cfg.DefaultLanguage = "xx"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown default language to fail validation")
	}
	cfg.DefaultLanguage = AutoLanguage
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected auto to validate, got %v", err)
	}
}
