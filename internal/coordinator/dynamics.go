package coordinator

import (
	"github.com/notemark/notemark/internal/notation"
)

// markingForVelocity buckets a MIDI velocity into a notated dynamic.
func markingForVelocity(v uint8) notation.DynamicMarking {
	switch {
	case v < 16:
		return notation.DynamicPP
	case v < 33:
		return notation.DynamicP
	case v < 49:
		return notation.DynamicMP
	case v < 65:
		return notation.DynamicMF
	case v < 81:
		return notation.DynamicF
	default:
		return notation.DynamicFF
	}
}

// MapDynamics attaches a dynamic marking to every sounding note. Rests are
// skipped.
func MapDynamics(store *notation.Store) error {
	for i := 0; i < store.Len(); i++ {
		n := store.At(i)
		if n.Note.IsRest() {
			continue
		}
		dyn, err := store.AttachDynamics(i)
		if err != nil {
			return err
		}
		dyn.Marking = markingForVelocity(n.Note.Velocity)
		dyn.Velocity = n.Note.Velocity
		n.Flags |= notation.FlagDynamicsMapping
	}
	return nil
}
