package extract

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/notemark/notemark/internal/notation"
)

// ReadFile parses a standard MIDI file from disk.
func ReadFile(path string) (*smf.SMF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %v", path, err)
	}
	mid, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse %v: %v", path, err)
	}
	return mid, nil
}

// Notes decodes all note events into TimedNotes, sorted by track then
// start tick. Notes still sounding at end of file are closed at the last
// event tick.
func Notes(mid *smf.SMF) ([]notation.TimedNote, error) {
	var notes []notation.TimedNote
	tracker := newNoteTracker()
	var lastTime int64

	closeNote := func(k key, n openNote, end int64) {
		if end <= n.start {
			return
		}
		notes = append(notes, notation.TimedNote{
			Pitch:     k.note,
			Velocity:  n.velocity,
			StartTick: uint32(n.start),
			Duration:  uint32(end - n.start),
			Channel:   k.ch,
			Track:     uint8(n.track),
		})
	}

	err := ForEachEventWithTime(mid, func(time int64, track int, msg smf.Message) error {
		lastTime = time
		var ch, note, velocity uint8
		switch {
		case msg.GetNoteStart(&ch, &note, &velocity):
			k := key{ch, note}
			if prev, restruck := tracker.NoteOn(k, time, velocity, track); restruck {
				closeNote(k, prev, time)
			}
		case msg.GetNoteEnd(&ch, &note):
			k := key{ch, note}
			if n, ok := tracker.NoteOff(k); ok {
				closeNote(k, n, time)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for k, n := range tracker.Open() {
		closeNote(k, n, lastTime)
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Track != notes[j].Track {
			return notes[i].Track < notes[j].Track
		}
		if notes[i].StartTick != notes[j].StartTick {
			return notes[i].StartTick < notes[j].StartTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes, nil
}

// MeasureNotes returns the notes starting within the measure, in start
// order, with velocity-0 rest notes synthesized for every uncovered time
// range so downstream consumers see the upstream rest convention.
func MeasureNotes(notes []notation.TimedNote, m Measure) []notation.TimedNote {
	var out []notation.TimedNote
	for _, n := range notes {
		if int64(n.StartTick) >= m.Begin && int64(n.StartTick) < m.End() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTick < out[j].StartTick
	})

	// Watermark sweep over sounding notes; every hole becomes a rest.
	var rests []notation.TimedNote
	pos := m.Begin
	for _, n := range out {
		if n.IsRest() {
			continue
		}
		if int64(n.StartTick) > pos {
			rests = append(rests, restNote(pos, int64(n.StartTick)-pos))
		}
		if end := int64(n.EndTick()); end > pos {
			pos = end
		}
	}
	if pos < m.End() {
		rests = append(rests, restNote(pos, m.End()-pos))
	}
	if len(rests) == 0 {
		return out
	}
	out = append(out, rests...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTick != out[j].StartTick {
			return out[i].StartTick < out[j].StartTick
		}
		return out[i].Velocity > out[j].Velocity
	})
	return out
}

func restNote(start, duration int64) notation.TimedNote {
	return notation.TimedNote{
		StartTick: uint32(start),
		Duration:  uint32(duration),
	}
}
