// Package coordinator implements the notation coordination engine: it
// enriches a measure's notes with beam, rest, dynamics, and stem metadata
// and resolves contradictions between tuplet groupings, beam groupings,
// and rest placement. Processing is single-threaded and synchronous; the
// coordinator owns the store exclusively for the duration of Process.
package coordinator

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

// Section is the measure-boundary context of one processed note array.
type Section struct {
	StartTick uint32
	EndTick   uint32
	TimeSig   notation.TimeSignatureEvent
}

// Coordinator runs the five-phase processing chain over one section at a
// time. It is not safe for concurrent use; parallel callers must use one
// Coordinator per worker.
type Coordinator struct {
	cfg Config
	log *zap.Logger

	// degraded is set once the performance budget is exceeded with
	// fallback enabled; later sections then skip conflict resolution.
	degraded bool
}

// New validates the configuration and builds a coordinator. A nil logger
// disables logging.
func New(cfg Config, log *zap.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{cfg: cfg, log: log}, nil
}

// Process enriches the store's notes in place: tuplet attachment, beam
// normalization and repair, rest consolidation, dynamics, conflict
// resolution, stems. tuplets and groups come from the external detection
// and grouping stages and are consumed read-only. Allocation and arena
// failures abort the current phase; coordination failures abort only in
// failFast mode.
func (c *Coordinator) Process(store *notation.Store, tuplets []*notation.TupletSpan, groups []notation.BeamGroup, section Section, metrics *Metrics) error {
	root := store.Arena()
	if root == nil {
		root = arena.New("section", c.memoryLimit(store.Len()))
		store.SetArena(root)
	}
	tracker := NewPhaseTracker(root, metrics, c.log)
	metrics.NotesProcessed += store.Len()

	if c.cfg.Features.EnableTupletDetection {
		if err := c.runPhase(tracker, PhaseTupletDetection, func(*arena.Arena) error {
			return c.applyTuplets(store, tuplets)
		}); err != nil {
			return err
		}
	}
	if c.cfg.Features.EnableBeamGrouping {
		if err := c.runPhase(tracker, PhaseBeamGrouping, func(*arena.Arena) error {
			return c.applyBeamGroups(store, groups)
		}); err != nil {
			return err
		}
	}
	if c.cfg.Features.EnableRestOptimization {
		if err := c.runPhase(tracker, PhaseRestOptimization, func(scope *arena.Arena) error {
			return c.optimizeRests(store, scope, section)
		}); err != nil {
			return err
		}
	}
	if c.cfg.Features.EnableDynamicsMapping {
		if err := c.runPhase(tracker, PhaseDynamicsMapping, func(*arena.Arena) error {
			return MapDynamics(store)
		}); err != nil {
			return err
		}
	}
	if err := c.runPhase(tracker, PhaseCoordination, func(scope *arena.Arena) error {
		return c.coordinate(store, scope, groups, metrics)
	}); err != nil {
		metrics.ErrorCount++
		// Allocation and arena errors abort the conversion regardless of
		// failure mode.
		if errors.Is(err, arena.ErrAllocationFailure) || errors.Is(err, arena.ErrArenaNotInitialized) {
			return err
		}
		if c.cfg.Coordination.CoordinationFailureMode == FailFast {
			return fmt.Errorf("coordination phase: %w: %w", err, ErrProcessingChainFailure)
		}
		c.log.Warn("coordination phase failed, keeping unresolved notation", zap.Error(err))
	}

	if c.cfg.Performance.EnablePerformanceFallback && !c.degraded &&
		!MeetsPerformanceTargets(metrics, &c.cfg.Performance) {
		c.degraded = true
		c.log.Warn("per-note budget exceeded, degrading: later sections skip conflict resolution",
			zap.Int64("budgetNs", c.cfg.Performance.MaxProcessingTimePerNoteNs),
			zap.Int("notes", metrics.NotesProcessed))
	}
	return nil
}

// Degraded reports whether performance fallback has tripped.
func (c *Coordinator) Degraded() bool {
	return c.degraded
}

func (c *Coordinator) memoryLimit(notes int) int64 {
	pct := c.cfg.Performance.MaxMemoryOverheadPercent
	if pct <= 0 || notes == 0 {
		return 0
	}
	baseline := int64(notes) * int64(unsafe.Sizeof(notation.EnhancedNote{}))
	return baseline * int64(100+pct) / 100
}

func (c *Coordinator) runPhase(tracker *PhaseTracker, p Phase, fn func(scope *arena.Arena) error) error {
	scope, err := tracker.BeginPhase(p)
	if err != nil {
		return err
	}
	defer tracker.EndPhase()
	if err := fn(scope); err != nil {
		return fmt.Errorf("phase %s: %w", p, err)
	}
	return nil
}

// applyTuplets attaches tuplet references to member notes. Spans below the
// configured confidence floor are dropped.
func (c *Coordinator) applyTuplets(store *notation.Store, tuplets []*notation.TupletSpan) error {
	for _, span := range tuplets {
		if span == nil || span.Confidence < c.cfg.Quality.TupletMinConfidence {
			continue
		}
		indices := span.NoteIndices
		if len(indices) == 0 {
			// Fall back to containment by start tick.
			for i := 0; i < store.Len(); i++ {
				if span.Contains(store.At(i).Note.StartTick) {
					indices = append(indices, i)
				}
			}
		}
		for pos, i := range indices {
			if i < 0 || i >= store.Len() {
				continue
			}
			info, err := store.AttachTuplet(i)
			if err != nil {
				return err
			}
			info.Span = span
			info.PositionInTuplet = pos
			store.At(i).Flags |= notation.FlagTupletDetection
		}
	}
	return nil
}

// applyBeamGroups consumes the external grouping: missing beaming
// attachments are filled in by member position, then every group is
// normalized and repaired.
func (c *Coordinator) applyBeamGroups(store *notation.Store, groups []notation.BeamGroup) error {
	for gi := range groups {
		g := &groups[gi]
		for pos, i := range g.NoteIndices {
			if i < 0 || i >= store.Len() {
				continue
			}
			b, err := store.AttachBeaming(i)
			if err != nil {
				return err
			}
			if b.GroupID == "" {
				b.GroupID = g.GroupID
				b.CanBeam = true
				switch {
				case len(g.NoteIndices) < 2:
					b.State = notation.BeamNone
				case pos == 0:
					b.State = notation.BeamBegin
				case pos == len(g.NoteIndices)-1:
					b.State = notation.BeamEnd
				default:
					b.State = notation.BeamContinue
				}
			}
			store.At(i).Flags |= notation.FlagBeamGrouping
		}
		EnsureConsistentBeaming(store, g.NoteIndices)
		RepairBeamGroupIntegrity(store, g)
	}
	return nil
}

// optimizeRests consolidates rest notes into spans and marks them, and
// validates measure coverage via gap detection.
func (c *Coordinator) optimizeRests(store *notation.Store, scope *arena.Arena, section Section) error {
	spans, err := BuildRestSpans(store, scope)
	if err != nil {
		return err
	}
	for si := range spans {
		for _, i := range spans[si].NoteIndices {
			rest, err := store.AttachRest(i)
			if err != nil {
				return err
			}
			rest.IsOptimizedRest = true
			rest.ConsolidatedFrom = len(spans[si].NoteIndices)
			store.At(i).Flags |= notation.FlagRestOptimization
		}
	}
	gaps, err := DetectGaps(store.Notes(), section.StartTick, section.EndTick)
	if err != nil {
		return err
	}
	if len(gaps) > 0 {
		c.log.Debug("uncovered time in section",
			zap.Int("gaps", len(gaps)),
			zap.Uint32("sectionStart", section.StartTick))
	}
	return nil
}

// coordinate cross-checks rest spans, beam groups, and tuplet spans, then
// finalizes stems. Skipped (except stems) once performance fallback has
// degraded the run.
func (c *Coordinator) coordinate(store *notation.Store, scope *arena.Arena, groups []notation.BeamGroup, metrics *Metrics) error {
	resolve := c.cfg.Coordination.EnableConflictResolution && !c.degraded

	if resolve && c.cfg.Quality.EnableRestBeamCoordination {
		spans, err := BuildRestSpans(store, scope)
		if err != nil {
			return err
		}
		for si := range spans {
			span := &spans[si]
			if RestConflictsWithBeamGroups(span, groups) || RestSpansAcrossBeamBoundary(span, groups) {
				AdjustRestPlacementForBeamConsistency(store, span)
				metrics.CoordinationConflictsResolved++
			}
		}
	}

	if resolve && c.cfg.Quality.EnableBeamTupletCoordination {
		if err := ResolveTupletBeamConflicts(store, scope, c.log, metrics); err != nil {
			return err
		}
	}

	for i := 0; i < store.Len(); i++ {
		if store.At(i).Note.IsRest() {
			continue
		}
		if err := CalculateAndSetStemDirection(store, i, groups); err != nil {
			return err
		}
	}
	store.MarkProcessed(notation.FlagCoordination)
	return nil
}
