package engine

import "fmt"

// AutoLanguage is the sentinel that asks the engine to detect the language.
const AutoLanguage = "auto"

// Strategy selects the engine's decoding strategy.
type Strategy int

const (
	// Greedy decodes by sampling the best candidate at each step.
	Greedy Strategy = iota
	// BeamSearch keeps BeamSize candidates per step.
	BeamSearch
)

func (s Strategy) String() string {
	if s == BeamSearch {
		return "beam_search"
	}
	return "greedy"
}

// Engine creates engine contexts and resolves languages.
type Engine interface {
	// Name returns the backend name.
	Name() string
	// Init loads the model at path. It returns nil when the context cannot be created.
	Init(modelPath string) Context
	// LanguageID returns the engine's id for a language code, or a negative value.
	LanguageID(code string) int
}

// Context is one loaded model instance. Run blocks until inference completes.
// The segment and token accessors describe the most recent successful Run.
type Context interface {
	Run(cfg RunConfig, samples []float32, processors int) int
	SegmentCount() int
	SegmentText(i int) string
	// SegmentStart and SegmentEnd are in centiseconds.
	SegmentStart(i int) int64
	SegmentEnd(i int) int64
	TokenCount(segment int) int
	TokenText(segment, token int) string
	TokenProbability(segment, token int) float32
	Free()
}

// SystemInfoer is implemented by contexts that can describe the host build.
type SystemInfoer interface {
	SystemInfo() string
}

// RunConfig is the engine's run configuration, derived from a job's parameters.
type RunConfig struct {
	Strategy         Strategy
	Threads          int
	MaxTextContext   int // negative keeps the engine default
	OffsetMs         int
	DurationMs       int
	TokenTimestamps  bool
	WordThreshold    float32
	EntropyThreshold float32
	LogprobThreshold float32
	MaxSegmentLength int
	SpeedUp          bool
	BestOf           int
	BeamSize         int
	Translate        bool
	PrintRealtime    bool
	PrintProgress    bool
	PrintTimestamps  bool
	PrintSpecial     bool
	Language         string
	InitialPrompt    string
}

// Config selects and configures the engine backend.
type Config struct {
	// Backend is the registry name of the engine ("stub" or "whispercpp").
	Backend string `yaml:"backend" mapstructure:"backend"`
	// ModelsDir is joined with relative model names.
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir"`
	// DefaultModel is used when a request names no model.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
	// DefaultLanguage is used when a request names no language.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"`
	// Verbose logs engine system info and per-job timings.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	// FallbackToStub uses the stub backend when the configured one is unavailable.
	FallbackToStub bool `yaml:"fallback_to_stub" mapstructure:"fallback_to_stub"`
}

// ApplyDefaults fills unset engine fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend()
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "ggml-base.en.bin"
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en"
	}
}

// Validate checks the engine configuration.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("engine.backend is required")
	}
	if c.DefaultLanguage != AutoLanguage && LookupLanguage(c.DefaultLanguage) < 0 {
		return fmt.Errorf("engine.default_language %q is not a known language", c.DefaultLanguage)
	}
	return nil
}
