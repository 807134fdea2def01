package coordinator

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

// ResolveTupletBeamConflicts detects and resolves beam groups that cross
// tuplet boundaries or contradict tuplet-internal ordering. Tuplet
// notation takes precedence: a beam is split rather than allowed to span
// two tuplets. Span/group rebuilding allocates from a and is released with
// the phase scope. The trailing best-effort hooks never fail the call;
// their errors are logged, counted, and swallowed.
func ResolveTupletBeamConflicts(store *notation.Store, a *arena.Arena, log *zap.Logger, metrics *Metrics) error {
	if log == nil {
		log = zap.NewNop()
	}

	// Conflicts require at least one note carrying both attachments.
	possible := false
	for i := 0; i < store.Len(); i++ {
		n := store.At(i)
		if n.Tuplet != nil && n.Beaming != nil {
			possible = true
			break
		}
	}
	if !possible {
		return nil
	}

	spans, err := collectTupletSpans(store, a)
	if err != nil {
		return fmt.Errorf("collecting tuplet spans: %w", err)
	}
	if len(spans) == 0 {
		return nil
	}
	groups, err := collectBeamGroups(store, a)
	if err != nil {
		return fmt.Errorf("collecting beam groups: %w", err)
	}

	for gi := range groups {
		g := &groups[gi]
		if len(g.NoteIndices) < 2 {
			continue
		}
		switch {
		case crossesTupletBoundary(store, g):
			if err := splitGroupAtTupletBoundaries(store, g); err != nil {
				metrics.ErrorCount++
				return fmt.Errorf("splitting group %s: %w: %w", g.GroupID, err, ErrCoordinationConflict)
			}
			metrics.CoordinationConflictsResolved++
			log.Debug("beam group split at tuplet boundary", zap.String("group", g.GroupID))
		case inconsistentWithTuplet(store, g):
			EnsureConsistentBeaming(store, g.NoteIndices)
			metrics.CoordinationConflictsResolved++
			log.Debug("beam group renormalized inside tuplet", zap.String("group", g.GroupID))
		}
	}

	// Best-effort refinement. Failures here are advisory: counted and
	// logged, never propagated.
	var advisory error
	advisory = multierr.Append(advisory, handlePartialTuplets(store, spans, metrics))
	advisory = multierr.Append(advisory, handleNestedGroupings(store, spans, groups, log))
	advisory = multierr.Append(advisory, ensureTupletBeamConsistency(store, spans))
	if advisory != nil {
		metrics.AdvisoryErrors += len(multierr.Errors(advisory))
		log.Warn("tuplet/beam refinement hooks reported errors", zap.Error(advisory))
	}
	return nil
}

// collectTupletSpans gathers the distinct tuplet spans referenced by note
// attachments, in first-appearance order, with their member indices.
func collectTupletSpans(store *notation.Store, a *arena.Arena) ([]*notation.TupletSpan, error) {
	distinct := 0
	seen := make(map[*notation.TupletSpan]int)
	for i := 0; i < store.Len(); i++ {
		t := store.At(i).Tuplet
		if t == nil || t.Span == nil {
			continue
		}
		if _, ok := seen[t.Span]; !ok {
			seen[t.Span] = distinct
			distinct++
		}
	}
	spans, err := arena.Slice[*notation.TupletSpan](a, distinct)
	if err != nil {
		return nil, err
	}
	for span, pos := range seen {
		spans[pos] = span
	}
	return spans, nil
}

// collectBeamGroups rebuilds groups from per-note beaming attachments:
// consecutive notes sharing a non-empty group ID form one group.
func collectBeamGroups(store *notation.Store, a *arena.Arena) ([]notation.BeamGroup, error) {
	count := 0
	lastID := ""
	for i := 0; i < store.Len(); i++ {
		b := store.At(i).Beaming
		if b == nil || b.GroupID == "" {
			lastID = ""
			continue
		}
		if b.GroupID != lastID {
			count++
			lastID = b.GroupID
		}
	}
	groups, err := arena.Slice[notation.BeamGroup](a, count)
	if err != nil {
		return nil, err
	}
	groups = groups[:0]
	lastID = ""
	for i := 0; i < store.Len(); i++ {
		n := store.At(i)
		b := n.Beaming
		if b == nil || b.GroupID == "" {
			lastID = ""
			continue
		}
		if b.GroupID != lastID {
			groups = append(groups, notation.BeamGroup{
				GroupID:   b.GroupID,
				StartTick: n.Note.StartTick,
				EndTick:   n.Note.EndTick(),
			})
			lastID = b.GroupID
		}
		g := &groups[len(groups)-1]
		g.NoteIndices = append(g.NoteIndices, i)
		if end := n.Note.EndTick(); end > g.EndTick {
			g.EndTick = end
		}
	}
	return groups, nil
}

func memberSpan(store *notation.Store, idx int) *notation.TupletSpan {
	if t := store.At(idx).Tuplet; t != nil {
		return t.Span
	}
	return nil
}

// crossesTupletBoundary reports whether the group's members map to more
// than one distinct tuplet span, or mix in-span and out-of-span notes.
func crossesTupletBoundary(store *notation.Store, g *notation.BeamGroup) bool {
	var first *notation.TupletSpan
	haveFirst := false
	for _, i := range g.NoteIndices {
		span := memberSpan(store, i)
		if !haveFirst {
			first, haveFirst = span, true
			continue
		}
		if span != first {
			return true
		}
	}
	return false
}

// splitGroupAtTupletBoundaries re-beams the group as maximal runs of
// members sharing one tuplet span (or none), so no single beam spans two
// tuplets. Singleton runs become unbeamed.
func splitGroupAtTupletBoundaries(store *notation.Store, g *notation.BeamGroup) error {
	run := make([]int, 0, len(g.NoteIndices))
	var runSpan *notation.TupletSpan
	flush := func() {
		if len(run) >= 2 {
			EnsureConsistentBeaming(store, run)
		} else if len(run) == 1 {
			if b := store.At(run[0]).Beaming; b != nil {
				b.State = notation.BeamNone
			}
		}
		run = run[:0]
	}
	for _, i := range g.NoteIndices {
		span := memberSpan(store, i)
		if len(run) > 0 && span != runSpan {
			flush()
		}
		runSpan = span
		run = append(run, i)
	}
	flush()
	return nil
}

// inconsistentWithTuplet reports whether a group fully inside one tuplet
// span carries a begin/continue/end assignment that does not read in
// position order.
func inconsistentWithTuplet(store *notation.Store, g *notation.BeamGroup) bool {
	span := memberSpan(store, g.NoteIndices[0])
	if span == nil {
		return false
	}
	for _, i := range g.NoteIndices[1:] {
		if memberSpan(store, i) != span {
			return false
		}
	}
	var beamed []int
	for _, i := range g.NoteIndices {
		if store.At(i).Beaming != nil {
			beamed = append(beamed, i)
		}
	}
	if len(beamed) < 2 {
		return false
	}
	for pos, i := range beamed {
		want := notation.BeamContinue
		switch pos {
		case 0:
			want = notation.BeamBegin
		case len(beamed) - 1:
			want = notation.BeamEnd
		}
		if store.At(i).Beaming.State != want {
			return true
		}
	}
	return false
}

// handlePartialTuplets flags tuplet spans that captured fewer notes than
// their type expects. The flag is a conflict count for upstream
// correction; notes are not mutated.
func handlePartialTuplets(store *notation.Store, spans []*notation.TupletSpan, metrics *Metrics) error {
	for _, span := range spans {
		if span == nil {
			continue
		}
		captured := 0
		for i := 0; i < store.Len(); i++ {
			if memberSpan(store, i) == span {
				captured++
			}
		}
		if captured < span.Type.ExpectedNotes() {
			metrics.CoordinationConflictsResolved++
		}
	}
	return nil
}

// handleNestedGroupings is the extension point for simultaneous nested
// tuplet/beam/rest conflicts. It accepts the full context and must never
// fail loudly; today it only reports nesting it observes.
func handleNestedGroupings(store *notation.Store, spans []*notation.TupletSpan, groups []notation.BeamGroup, log *zap.Logger) error {
	if store == nil {
		return fmt.Errorf("nested groupings: nil store")
	}
	for i, outer := range spans {
		for j, inner := range spans {
			if i == j || outer == nil || inner == nil {
				continue
			}
			if inner.StartTick >= outer.StartTick && inner.EndTick <= outer.EndTick &&
				(inner.StartTick > outer.StartTick || inner.EndTick < outer.EndTick) {
				log.Debug("nested tuplet spans observed",
					zap.Uint32("outerStart", outer.StartTick),
					zap.Uint32("innerStart", inner.StartTick),
					zap.Int("beamGroups", len(groups)))
			}
		}
	}
	return nil
}

// ensureTupletBeamConsistency re-asserts that every contiguous beamed
// subsequence inside each tuplet span is self-consistent.
func ensureTupletBeamConsistency(store *notation.Store, spans []*notation.TupletSpan) error {
	for _, span := range spans {
		if span == nil {
			continue
		}
		var run []int
		flush := func() {
			if len(run) >= 2 {
				EnsureConsistentBeaming(store, run)
			}
			run = nil
		}
		for _, i := range span.NoteIndices {
			if i < 0 || i >= store.Len() {
				flush()
				continue
			}
			if store.At(i).Beaming == nil {
				flush()
				continue
			}
			run = append(run, i)
		}
		flush()
	}
	return nil
}
