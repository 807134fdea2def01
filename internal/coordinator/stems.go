package coordinator

import (
	"github.com/notemark/notemark/internal/notation"
)

// middleLinePitch is B4, the middle line of the treble staff. Notes below
// it stem up, notes above it stem down; on the line the voice breaks the
// tie.
const middleLinePitch = 71

// divFloor is floor division (rounds toward negative infinity).
func divFloor(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// staffLine maps a pitch to its vertical line position on the 5-line
// staff, with 3 the middle line.
func staffLine(pitch uint8) int {
	offset := int(pitch) - middleLinePitch
	switch {
	case offset > 1:
		return 3 + divFloor(offset+1, 2)
	case offset < -1:
		return 3 - divFloor(-offset+1, 2)
	default:
		return 3
	}
}

// stemDirection applies the pitch rule with the middle-line voice
// tie-break.
func stemDirection(pitch uint8, voice int) notation.StemDirection {
	switch {
	case pitch < middleLinePitch:
		return notation.StemUp
	case pitch > middleLinePitch:
		return notation.StemDown
	case voice <= 2:
		return notation.StemUp
	default:
		return notation.StemDown
	}
}

// CalculateAndSetStemDirection computes and stores stem metadata for the
// note at idx. A note inside a beam group adopts the direction already
// assigned to an earlier member of that group so the whole beam agrees;
// otherwise the pitch rule decides. Returns ErrArenaNotInitialized when
// the store has no arena and the note no StemInfo to overwrite.
func CalculateAndSetStemDirection(store *notation.Store, idx int, beamGroups []notation.BeamGroup) error {
	note := store.At(idx).Note
	voice := int(note.Channel) + 1

	dir := stemDirection(note.Pitch, voice)
	// First group containing this note wins; uniqueness is assumed
	// upstream.
scan:
	for gi := range beamGroups {
		for _, mi := range beamGroups[gi].NoteIndices {
			if mi < 0 || mi >= store.Len() {
				continue
			}
			member := store.At(mi).Note
			if member.StartTick != note.StartTick || member.Pitch != note.Pitch {
				continue
			}
			for _, other := range beamGroups[gi].NoteIndices {
				if other != mi && other >= 0 && other < store.Len() && store.At(other).Stem != nil {
					dir = store.At(other).Stem.Direction
					break
				}
			}
			break scan
		}
	}

	stem, err := store.AttachStem(idx)
	if err != nil {
		return err
	}
	stem.Direction = dir
	stem.StaffLine = staffLine(note.Pitch)
	stem.Voice = voice
	return nil
}
