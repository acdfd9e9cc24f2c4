package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrEnglishOnlyModel is returned when a non-English language is requested
// from a model without multilingual support.
var ErrEnglishOnlyModel = errors.New("model is English-only")

// runSetter is the part of the whisper.cpp bindings context that RunConfig
// maps onto.
type runSetter interface {
	IsMultilingual() bool
	SetLanguage(string) error
	SetThreads(uint)
	SetTranslate(bool)
	SetOffset(time.Duration)
	SetDuration(time.Duration)
	SetTokenTimestamps(bool)
	SetTokenThreshold(float32)
	SetMaxSegmentLength(uint)
	SetEntropyThold(float32)
	SetMaxContext(int)
	SetBeamSize(int)
	SetInitialPrompt(string)
}

// applyRunConfig copies cfg onto s. English-only models take no language
// setting at all, so "en" and "auto" leave it unset there.
func applyRunConfig(s runSetter, cfg RunConfig) error {
	if s.IsMultilingual() {
		if err := s.SetLanguage(cfg.Language); err != nil {
			return fmt.Errorf("language %q: %w", cfg.Language, err)
		}
	} else if !englishOrAuto(cfg.Language) {
		return fmt.Errorf("language %q: %w", cfg.Language, ErrEnglishOnlyModel)
	}
	s.SetThreads(uint(max(cfg.Threads, 1)))
	s.SetTranslate(cfg.Translate)
	s.SetOffset(time.Duration(cfg.OffsetMs) * time.Millisecond)
	s.SetDuration(time.Duration(cfg.DurationMs) * time.Millisecond)
	s.SetTokenTimestamps(cfg.TokenTimestamps)
	s.SetTokenThreshold(cfg.WordThreshold)
	s.SetMaxSegmentLength(uint(max(cfg.MaxSegmentLength, 0)))
	s.SetEntropyThold(cfg.EntropyThreshold)
	if cfg.MaxTextContext >= 0 {
		s.SetMaxContext(cfg.MaxTextContext)
	}
	if cfg.Strategy == BeamSearch {
		s.SetBeamSize(cfg.BeamSize)
	}
	if cfg.InitialPrompt != "" {
		s.SetInitialPrompt(cfg.InitialPrompt)
	}
	return nil
}

func englishOrAuto(code string) bool {
	return code == AutoLanguage || LookupLanguage(code) == 0
}

// unsupportedOptions lists the RunConfig values the high-level bindings
// cannot set, keyed by option name. Values equal to the bundle defaults are
// left out.
func unsupportedOptions(cfg RunConfig) map[string]any {
	out := make(map[string]any)
	if cfg.LogprobThreshold != -1 {
		out["logprob_threshold"] = cfg.LogprobThreshold
	}
	if cfg.BestOf != 2 {
		out["best_of"] = cfg.BestOf
	}
	if cfg.SpeedUp {
		out["speed_up"] = true
	}
	if cfg.PrintSpecial {
		out["print_special"] = true
	}
	return out
}
