package job

import (
	apperrors "github.com/kbukum/whisperbridge/errors"
	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/handle"
)

// contextSource yields the engine context a job runs on, with the func that
// gives it back.
type contextSource interface {
	acquire() (engine.Context, func(), error)
}

// ownedSource creates a fresh context and frees it on release.
type ownedSource struct {
	eng       engine.Engine
	modelPath string
}

func (s ownedSource) acquire() (engine.Context, func(), error) {
	c := s.eng.Init(s.modelPath)
	if c == nil {
		return nil, nil, apperrors.EngineInitFailed(s.modelPath)
	}
	return c, c.Free, nil
}

// borrowedSource lends a handle's context of one generation.
type borrowedSource struct {
	h   *handle.Handle
	gen uint64
}

func (s borrowedSource) acquire() (engine.Context, func(), error) {
	return s.h.Borrow(s.gen)
}
