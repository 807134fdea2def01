package coordinator

import (
	"time"

	"github.com/google/uuid"
)

// Phase names the five pipeline phases.
type Phase string

const (
	PhaseTupletDetection  Phase = "tuplet_detection"
	PhaseBeamGrouping     Phase = "beam_grouping"
	PhaseRestOptimization Phase = "rest_optimization"
	PhaseDynamicsMapping  Phase = "dynamics_mapping"
	PhaseCoordination     Phase = "coordination"
)

// Phases lists the phases in execution order.
var Phases = []Phase{
	PhaseTupletDetection,
	PhaseBeamGrouping,
	PhaseRestOptimization,
	PhaseDynamicsMapping,
	PhaseCoordination,
}

// PhaseMetrics records one phase's cost.
type PhaseMetrics struct {
	Elapsed   time.Duration
	PeakBytes int64
}

// Metrics is the processing-chain measurement for one run, threaded
// explicitly through every phase call rather than kept as ambient state.
type Metrics struct {
	RunID                         string
	PerPhase                      map[Phase]PhaseMetrics
	NotesProcessed                int
	CoordinationConflictsResolved int
	ErrorCount                    int
	// AdvisoryErrors counts failures of the best-effort hooks. Those are
	// deliberately non-fatal; the counter keeps them observable.
	AdvisoryErrors int
}

// NewMetrics returns an empty metrics record with a fresh run ID.
func NewMetrics() *Metrics {
	return &Metrics{
		RunID:    uuid.New().String(),
		PerPhase: make(map[Phase]PhaseMetrics),
	}
}

// TotalProcessingTime sums the per-phase wall times.
func (m *Metrics) TotalProcessingTime() time.Duration {
	var total time.Duration
	for _, pm := range m.PerPhase {
		total += pm.Elapsed
	}
	return total
}

// MeetsPerformanceTargets reports whether the average per-note processing
// time stays within the configured budget. Vacuously true with zero notes.
func MeetsPerformanceTargets(m *Metrics, cfg *PerformanceConfig) bool {
	if m.NotesProcessed == 0 {
		return true
	}
	perNote := m.TotalProcessingTime().Nanoseconds() / int64(m.NotesProcessed)
	return perNote <= cfg.MaxProcessingTimePerNoteNs
}
