// Package extract decodes standard MIDI files into the pipeline's note
// model: absolute-tick timed notes, measure boundaries from meta
// time-signature events, and synthesized rests for uncovered time.
package extract

import (
	"errors"

	"gitlab.com/gomidi/midi/v2/smf"
)

// StopIteration can be returned from a yield function to stop without
// failure.
var StopIteration = errors.New("extract: stop iteration")

// cursor walks one track in absolute time.
type cursor struct {
	track smf.Track
	pos   int
	now   int64
}

func (c *cursor) done() bool {
	return c.pos >= len(c.track)
}

// peek returns the absolute time and message of the next event without
// consuming it.
func (c *cursor) peek() (int64, smf.Message) {
	ev := c.track[c.pos]
	return c.now + int64(ev.Delta), ev.Message
}

func (c *cursor) advance() {
	c.now += int64(c.track[c.pos].Delta)
	c.pos++
}

// ForEachEventWithTime merges all tracks into one absolute-time event
// stream and calls yield per event. Ties between tracks are broken in
// favor of note-off messages so a note's end is always observed before a
// restrike at the same tick. End-of-track markers are consumed silently.
func ForEachEventWithTime(mid *smf.SMF, yield func(time int64, track int, msg smf.Message) error) error {
	cursors := make([]cursor, len(mid.Tracks))
	for i, t := range mid.Tracks {
		cursors[i] = cursor{track: t}
	}
	for {
		best := -1
		var bestTime int64
		bestOff := false
		for i := range cursors {
			c := &cursors[i]
			if c.done() {
				continue
			}
			time, msg := c.peek()
			off := msg.GetNoteEnd(nil, nil)
			if best < 0 || time < bestTime || (time == bestTime && off && !bestOff) {
				best, bestTime, bestOff = i, time, off
			}
		}
		if best < 0 {
			return nil
		}
		_, msg := cursors[best].peek()
		cursors[best].advance()
		if msg.Is(smf.MetaEndOfTrackMsg) {
			continue
		}
		if err := yield(bestTime, best, msg); err != nil {
			if errors.Is(err, StopIteration) {
				return nil
			}
			return err
		}
	}
}
