package coordinator

import "fmt"

// FailureMode selects how the phase chain reacts when coordination fails.
type FailureMode string

const (
	// FailFast aborts the whole conversion on the first coordination error.
	FailFast FailureMode = "failFast"
	// Fallback keeps the unresolved notation and continues.
	Fallback FailureMode = "fallback"
)

// FeatureConfig switches individual phases on or off.
type FeatureConfig struct {
	EnableTupletDetection  bool `yaml:"enableTupletDetection"`
	EnableBeamGrouping     bool `yaml:"enableBeamGrouping"`
	EnableRestOptimization bool `yaml:"enableRestOptimization"`
	EnableDynamicsMapping  bool `yaml:"enableDynamicsMapping"`
}

// PerformanceConfig bounds the per-note processing budget.
type PerformanceConfig struct {
	MaxProcessingTimePerNoteNs  int64 `yaml:"maxProcessingTimePerNoteNs"`
	MaxMemoryOverheadPercent    int   `yaml:"maxMemoryOverheadPercent"`
	EnablePerformanceMonitoring bool  `yaml:"enablePerformanceMonitoring"`
	EnablePerformanceFallback   bool  `yaml:"enablePerformanceFallback"`
}

// QualityConfig tunes the notational quality/effort trade-off.
type QualityConfig struct {
	TupletMinConfidence          float64 `yaml:"tupletMinConfidence"`
	EnableBeamTupletCoordination bool    `yaml:"enableBeamTupletCoordination"`
	EnableRestBeamCoordination   bool    `yaml:"enableRestBeamCoordination"`
	PrioritizeReadability        bool    `yaml:"prioritizeReadability"`
}

// CoordinationConfig controls the conflict-resolution phase.
type CoordinationConfig struct {
	EnableConflictResolution   bool        `yaml:"enableConflictResolution"`
	CoordinationFailureMode    FailureMode `yaml:"coordinationFailureMode"`
	EnableInterPhaseValidation bool        `yaml:"enableInterPhaseValidation"`
}

// Config is the engine configuration as loaded from YAML.
type Config struct {
	Features     FeatureConfig      `yaml:"features"`
	Performance  PerformanceConfig  `yaml:"performance"`
	Quality      QualityConfig      `yaml:"quality"`
	Coordination CoordinationConfig `yaml:"coordination"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Features: FeatureConfig{
			EnableTupletDetection:  true,
			EnableBeamGrouping:     true,
			EnableRestOptimization: true,
			EnableDynamicsMapping:  true,
		},
		Performance: PerformanceConfig{
			MaxProcessingTimePerNoteNs:  10000,
			MaxMemoryOverheadPercent:    50,
			EnablePerformanceMonitoring: true,
		},
		Quality: QualityConfig{
			TupletMinConfidence:          0.75,
			EnableBeamTupletCoordination: true,
			EnableRestBeamCoordination:   true,
			PrioritizeReadability:        true,
		},
		Coordination: CoordinationConfig{
			EnableConflictResolution: true,
			CoordinationFailureMode:  Fallback,
		},
	}
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	if c.Performance.MaxProcessingTimePerNoteNs < 0 {
		return fmt.Errorf("performance.maxProcessingTimePerNoteNs must be >= 0, got %d: %w",
			c.Performance.MaxProcessingTimePerNoteNs, ErrInvalidConfiguration)
	}
	if c.Performance.MaxMemoryOverheadPercent < 0 {
		return fmt.Errorf("performance.maxMemoryOverheadPercent must be >= 0, got %d: %w",
			c.Performance.MaxMemoryOverheadPercent, ErrInvalidConfiguration)
	}
	if c.Quality.TupletMinConfidence < 0 || c.Quality.TupletMinConfidence > 1 {
		return fmt.Errorf("quality.tupletMinConfidence must be in [0,1], got %v: %w",
			c.Quality.TupletMinConfidence, ErrInvalidConfiguration)
	}
	switch c.Coordination.CoordinationFailureMode {
	case FailFast, Fallback, "":
	default:
		return fmt.Errorf("coordination.coordinationFailureMode %q not one of failFast, fallback: %w",
			c.Coordination.CoordinationFailureMode, ErrInvalidConfiguration)
	}
	return nil
}
