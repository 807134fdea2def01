package coordinator

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notemark/notemark/internal/arena"
)

// PhaseTracker brackets each pipeline phase in a scoped sub-arena and
// records wall time and peak memory against the run's metrics. A phase
// must fully complete, including its best-effort hooks, before its arena
// is torn down; the tracker is therefore non-reentrant.
type PhaseTracker struct {
	root    *arena.Arena
	metrics *Metrics
	log     *zap.Logger

	current Phase
	scope   *arena.Arena
	started time.Time
}

// NewPhaseTracker wires a tracker over the run arena and metrics.
func NewPhaseTracker(root *arena.Arena, metrics *Metrics, log *zap.Logger) *PhaseTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &PhaseTracker{root: root, metrics: metrics, log: log}
}

// BeginPhase opens the phase scope and returns its arena for phase-local
// allocations (spans, groups, temporary buffers).
func (t *PhaseTracker) BeginPhase(p Phase) (*arena.Arena, error) {
	if t.scope != nil {
		return nil, fmt.Errorf("phase %s while %s still open: %w", p, t.current, ErrProcessingChainFailure)
	}
	scope, err := t.root.Child(string(p))
	if err != nil {
		return nil, err
	}
	t.current = p
	t.scope = scope
	t.started = time.Now()
	t.log.Debug("phase begin", zap.String("phase", string(p)))
	return scope, nil
}

// EndPhase records the phase cost and tears the phase arena down. Safe to
// call on the error path; phase-local allocations are released either way.
func (t *PhaseTracker) EndPhase() {
	if t.scope == nil {
		return
	}
	elapsed := time.Since(t.started)
	peak := t.scope.Peak()
	t.scope.Release()
	pm := t.metrics.PerPhase[t.current]
	pm.Elapsed += elapsed
	if peak > pm.PeakBytes {
		pm.PeakBytes = peak
	}
	t.metrics.PerPhase[t.current] = pm
	t.log.Debug("phase end",
		zap.String("phase", string(t.current)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("peakBytes", peak))
	t.scope = nil
	t.current = ""
}
