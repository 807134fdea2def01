// Package grouping is the reference beam-group builder: a beat-bucketed
// initial grouping of short sounding notes, as an external grouping stage
// would hand to the coordinator for validation and repair.
package grouping

import (
	"github.com/google/uuid"

	"github.com/notemark/notemark/internal/notation"
)

// Params bounds one measure's grouping.
type Params struct {
	// MeasureBegin is the measure's absolute start tick.
	MeasureBegin int64
	// BeatLength is the tick length of one beat.
	BeatLength int64
	// MaxBeamedDuration is the longest note duration that still gets a
	// beam (notes of a quarter and longer carry flagsless heads).
	MaxBeamedDuration int64
}

// Build groups runs of beamable notes that share a beat into beam groups
// with fresh group IDs. Indices in the result refer to positions in notes.
// Rests and long notes break runs; runs shorter than two notes produce no
// group.
func Build(notes []notation.TimedNote, p Params) []notation.BeamGroup {
	if p.BeatLength <= 0 {
		return nil
	}
	var groups []notation.BeamGroup
	var run []int
	runBeat := int64(-1)

	flush := func() {
		if len(run) >= 2 {
			g := notation.BeamGroup{
				GroupID:     uuid.New().String(),
				NoteIndices: append([]int(nil), run...),
				StartTick:   notes[run[0]].StartTick,
				EndTick:     notes[run[0]].EndTick(),
			}
			for _, i := range run[1:] {
				if end := notes[i].EndTick(); end > g.EndTick {
					g.EndTick = end
				}
			}
			groups = append(groups, g)
		}
		run = run[:0]
	}

	for i, n := range notes {
		if n.IsRest() || int64(n.Duration) > p.MaxBeamedDuration {
			flush()
			runBeat = -1
			continue
		}
		beat := (int64(n.StartTick) - p.MeasureBegin) / p.BeatLength
		if beat != runBeat {
			flush()
			runBeat = beat
		}
		run = append(run, i)
	}
	flush()
	return groups
}

// Annotate fills initial per-note beaming attachments for the built
// groups, the way the external grouping stage populates them: state by
// position, beat position relative to the measure.
func Annotate(store *notation.Store, groups []notation.BeamGroup, p Params) error {
	for gi := range groups {
		g := &groups[gi]
		for pos, i := range g.NoteIndices {
			b, err := store.AttachBeaming(i)
			if err != nil {
				return err
			}
			b.GroupID = g.GroupID
			b.CanBeam = true
			b.Level = 1
			b.BeatPosition = float64(int64(store.At(i).Note.StartTick)-p.MeasureBegin) / float64(p.BeatLength)
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
	}
	return nil
}
