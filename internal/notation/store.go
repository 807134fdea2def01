package notation

import (
	"github.com/notemark/notemark/internal/arena"
)

// Store is the enhanced-note store for one measure or section: the base
// notes plus their attachments, backed by an arena for allocation
// accounting. The pipeline owns a Store exclusively while processing it.
type Store struct {
	notes []EnhancedNote
	arena *arena.Arena
}

// NewStore wraps the decoded notes. a may be nil; attach operations then
// fail until SetArena is called, except where an attachment already
// exists and is overwritten in place.
func NewStore(notes []TimedNote, a *arena.Arena) *Store {
	enhanced := make([]EnhancedNote, len(notes))
	for i, n := range notes {
		enhanced[i].Note = n
	}
	return &Store{notes: enhanced, arena: a}
}

// SetArena attaches the allocation scope used for new attachments.
func (s *Store) SetArena(a *arena.Arena) {
	s.arena = a
}

// Arena returns the attached allocation scope, if any.
func (s *Store) Arena() *arena.Arena {
	return s.arena
}

// Len returns the note count.
func (s *Store) Len() int {
	return len(s.notes)
}

// At returns the i-th enhanced note for in-place mutation.
func (s *Store) At(i int) *EnhancedNote {
	return &s.notes[i]
}

// Notes returns the underlying enhanced-note slice.
func (s *Store) Notes() []EnhancedNote {
	return s.notes
}

func attach[T any](s *Store, existing **T) (*T, error) {
	if *existing != nil {
		return *existing, nil
	}
	if s.arena == nil {
		return nil, arena.ErrArenaNotInitialized
	}
	p, err := arena.Alloc[T](s.arena)
	if err != nil {
		return nil, err
	}
	*existing = p
	return p, nil
}

// AttachBeaming returns the note's beaming attachment, allocating it if
// absent.
func (s *Store) AttachBeaming(i int) (*BeamingInfo, error) {
	return attach(s, &s.notes[i].Beaming)
}

// AttachTuplet returns the note's tuplet attachment, allocating it if
// absent.
func (s *Store) AttachTuplet(i int) (*TupletInfo, error) {
	return attach(s, &s.notes[i].Tuplet)
}

// AttachRest returns the note's rest attachment, allocating it if absent.
func (s *Store) AttachRest(i int) (*RestInfo, error) {
	return attach(s, &s.notes[i].Rest)
}

// AttachDynamics returns the note's dynamics attachment, allocating it if
// absent.
func (s *Store) AttachDynamics(i int) (*DynamicsInfo, error) {
	return attach(s, &s.notes[i].Dynamics)
}

// AttachStem returns the note's stem attachment, allocating it if absent.
func (s *Store) AttachStem(i int) (*StemInfo, error) {
	return attach(s, &s.notes[i].Stem)
}

// MarkProcessed sets a phase flag on every note.
func (s *Store) MarkProcessed(flag ProcessingFlags) {
	for i := range s.notes {
		s.notes[i].Flags |= flag
	}
}
