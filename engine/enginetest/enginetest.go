// Package enginetest provides a scripted engine for tests. It records how
// often each primitive is called so tests can assert which engine calls a
// job made.
package enginetest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/whisperbridge/engine"
)

// Token is a scripted token.
type Token struct {
	Text        string
	Probability float32
}

// Segment is a scripted segment.
type Segment struct {
	Start, End int64
	Text       string
	Tokens     []Token
}

// Engine is a fake engine.Engine. Configure it before use; the counters are
// safe to read concurrently.
type Engine struct {
	// Segments is returned by every successful Run.
	Segments []Segment
	// InitFails makes Init return nil.
	InitFails bool
	// RunStatus is returned by Run. Non-zero leaves no output.
	RunStatus int
	// RunDelay makes Run sleep before returning.
	RunDelay time.Duration
	// RunHook is called at the start of every Run.
	RunHook func()

	inits     atomic.Int64
	runs      atomic.Int64
	frees     atomic.Int64
	langs     atomic.Int64
	active    atomic.Int64
	maxActive atomic.Int64

	mu      sync.Mutex
	configs []engine.RunConfig
	paths   []string
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Name() string { return "fake" }

func (e *Engine) LanguageID(code string) int {
	e.langs.Add(1)
	return engine.LookupLanguage(code)
}

func (e *Engine) Init(modelPath string) engine.Context {
	e.inits.Add(1)
	e.mu.Lock()
	e.paths = append(e.paths, modelPath)
	e.mu.Unlock()
	if e.InitFails {
		return nil
	}
	return &Context{engine: e}
}

// Inits returns the number of Init calls.
func (e *Engine) Inits() int { return int(e.inits.Load()) }

// Runs returns the number of Run calls.
func (e *Engine) Runs() int { return int(e.runs.Load()) }

// Frees returns the number of Free calls across all contexts.
func (e *Engine) Frees() int { return int(e.frees.Load()) }

// LanguageLookups returns the number of LanguageID calls.
func (e *Engine) LanguageLookups() int { return int(e.langs.Load()) }

// MaxConcurrentRuns returns the highest number of overlapping Run calls seen.
func (e *Engine) MaxConcurrentRuns() int { return int(e.maxActive.Load()) }

// RunConfigs returns the configurations passed to Run, in call order.
func (e *Engine) RunConfigs() []engine.RunConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.RunConfig(nil), e.configs...)
}

// ModelPaths returns the paths passed to Init, in call order.
func (e *Engine) ModelPaths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.paths...)
}

// Context is the fake engine.Context returned by Engine.Init.
type Context struct {
	engine   *Engine
	segments []Segment
	freed    atomic.Int64
}

var _ engine.Context = (*Context)(nil)

func (c *Context) Run(cfg engine.RunConfig, _ []float32, _ int) int {
	e := c.engine
	e.runs.Add(1)
	n := e.active.Add(1)
	defer e.active.Add(-1)
	for {
		cur := e.maxActive.Load()
		if n <= cur || e.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	e.mu.Lock()
	e.configs = append(e.configs, cfg)
	e.mu.Unlock()

	if e.RunHook != nil {
		e.RunHook()
	}
	if e.RunDelay > 0 {
		time.Sleep(e.RunDelay)
	}
	if e.RunStatus != 0 {
		c.segments = nil
		return e.RunStatus
	}
	c.segments = e.Segments
	return 0
}

func (c *Context) SegmentCount() int { return len(c.segments) }

func (c *Context) SegmentText(i int) string { return c.segments[i].Text }

func (c *Context) SegmentStart(i int) int64 { return c.segments[i].Start }

func (c *Context) SegmentEnd(i int) int64 { return c.segments[i].End }

func (c *Context) TokenCount(segment int) int { return len(c.segments[segment].Tokens) }

func (c *Context) TokenText(segment, token int) string {
	return c.segments[segment].Tokens[token].Text
}

func (c *Context) TokenProbability(segment, token int) float32 {
	return c.segments[segment].Tokens[token].Probability
}

func (c *Context) Free() {
	c.freed.Add(1)
	c.engine.frees.Add(1)
}

// Freed returns how many times Free was called on this context.
func (c *Context) Freed() int { return int(c.freed.Load()) }
