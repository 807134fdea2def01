package extract

// key identifies a sounding note by channel and pitch.
type key struct {
	ch, note uint8
}

// openNote is a note-on waiting for its note-off.
type openNote struct {
	start    int64
	velocity uint8
	track    int
}

// noteTracker pairs note-on and note-off events. Restrikes of an already
// sounding key close the previous note at the restrike tick.
type noteTracker struct {
	open map[key]openNote
}

func newNoteTracker() *noteTracker {
	return &noteTracker{open: map[key]openNote{}}
}

// NoteOn opens a note, returning the previous open note on the same key if
// the strike implicitly closed one.
func (t *noteTracker) NoteOn(k key, time int64, velocity uint8, track int) (openNote, bool) {
	prev, restruck := t.open[k]
	t.open[k] = openNote{start: time, velocity: velocity, track: track}
	return prev, restruck
}

// NoteOff closes a note, returning it if one was open.
func (t *noteTracker) NoteOff(k key) (openNote, bool) {
	n, ok := t.open[k]
	if ok {
		delete(t.open, k)
	}
	return n, ok
}

// Open returns the still-sounding notes (unterminated at end of file).
func (t *noteTracker) Open() map[key]openNote {
	return t.open
}
