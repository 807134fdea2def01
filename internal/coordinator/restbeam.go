package coordinator

import (
	"github.com/notemark/notemark/internal/notation"
)

// interiorOverlap classifies how the range [start,end) sits relative to a
// beam group: whether its start and end fall strictly inside the group.
func interiorOverlap(start, end uint32, g *notation.BeamGroup) (startsWithin, endsWithin bool) {
	startsWithin = start > g.StartTick && start < g.EndTick
	endsWithin = end > g.StartTick && end < g.EndTick
	return
}

// RestConflictsWithBeamGroups reports whether the rest partially overlaps
// any beam group: exactly one of its endpoints lies strictly inside the
// group. Full containment, full encompassment, and disjoint ranges are not
// conflicts. Returns on the first conflicting group.
func RestConflictsWithBeamGroups(rest *notation.RestSpan, groups []notation.BeamGroup) bool {
	for gi := range groups {
		startsWithin, endsWithin := interiorOverlap(rest.StartTick, rest.EndTick, &groups[gi])
		if startsWithin != endsWithin {
			return true
		}
	}
	return false
}

// RestSpansAcrossBeamBoundary is the span-granularity variant: a violation
// is flagged when the span touches more than one group (by starting
// inside, ending inside, or fully encompassing it), or touches exactly one
// group asymmetrically.
func RestSpansAcrossBeamBoundary(span *notation.RestSpan, groups []notation.BeamGroup) bool {
	touched := 0
	asymmetric := false
	for gi := range groups {
		g := &groups[gi]
		startsWithin, endsWithin := interiorOverlap(span.StartTick, span.EndTick, g)
		encompasses := span.StartTick <= g.StartTick && span.EndTick >= g.EndTick
		if !startsWithin && !endsWithin && !encompasses {
			continue
		}
		touched++
		if startsWithin != endsWithin {
			asymmetric = true
		}
	}
	return touched > 1 || (touched == 1 && asymmetric)
}

// AdjustRestPlacementForBeamConsistency clears the optimized flag on every
// rest note in the span, forcing a later rest-optimization pass to
// reconsider placement with beam awareness. Pure mutation; never fails.
func AdjustRestPlacementForBeamConsistency(store *notation.Store, span *notation.RestSpan) {
	for _, i := range span.NoteIndices {
		if i < 0 || i >= store.Len() {
			continue
		}
		if rest := store.At(i).Rest; rest != nil {
			rest.IsOptimizedRest = false
		}
	}
}
