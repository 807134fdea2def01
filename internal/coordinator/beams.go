package coordinator

import (
	"github.com/notemark/notemark/internal/notation"
)

// GapThresholdTicks is the largest timing gap allowed inside a beam group:
// a sixteenth note at 480 PPQ. Adjacent beamed notes further apart than
// this get the beam split between them.
const GapThresholdTicks = 120

// EnsureConsistentBeaming normalizes begin/continue/end states across the
// ordered note indices of one beam group. No-op for fewer than two notes
// or when no member is currently beamed. Members without beaming info, and
// out-of-range indices from the external grouping stage, are skipped, not
// defaulted. A group left with a single beamed member is unbeamed rather
// than beginning a beam nothing ends.
func EnsureConsistentBeaming(store *notation.Store, indices []int) {
	if len(indices) < 2 {
		return
	}
	beamed := indices[:0:0]
	anyBeamed := false
	for _, i := range indices {
		if i < 0 || i >= store.Len() {
			continue
		}
		b := store.At(i).Beaming
		if b == nil {
			continue
		}
		beamed = append(beamed, i)
		if b.State != notation.BeamNone {
			anyBeamed = true
		}
	}
	if !anyBeamed {
		return
	}
	if len(beamed) < 2 {
		for _, i := range beamed {
			store.At(i).Beaming.State = notation.BeamNone
		}
		return
	}
	for pos, i := range beamed {
		b := store.At(i).Beaming
		switch pos {
		case 0:
			b.State = notation.BeamBegin
		case len(beamed) - 1:
			b.State = notation.BeamEnd
		default:
			b.State = notation.BeamContinue
		}
	}
}

// RepairBeamGroupIntegrity splits a beam group at timing discontinuities:
// for each adjacent pair of beamed members further apart than
// GapThresholdTicks, the left note ends its beam and the right note begins
// a new one. Overlapping or closely spaced notes are left unmodified.
func RepairBeamGroupIntegrity(store *notation.Store, group *notation.BeamGroup) {
	var prev int
	havePrev := false
	for _, i := range group.NoteIndices {
		if i < 0 || i >= store.Len() {
			continue
		}
		if store.At(i).Beaming == nil {
			continue
		}
		if !havePrev {
			prev, havePrev = i, true
			continue
		}
		cur := store.At(prev)
		next := store.At(i)
		var gap uint32
		if end := cur.Note.EndTick(); next.Note.StartTick > end {
			gap = next.Note.StartTick - end
		}
		if gap > GapThresholdTicks {
			cur.Beaming.State = notation.BeamEnd
			next.Beaming.State = notation.BeamBegin
		}
		prev = i
	}
}
