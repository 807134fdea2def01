package extract

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/notemark/notemark/internal/notation"
)

// Measure is one bar in absolute ticks with the time signature governing
// it.
type Measure struct {
	Begin  int64
	Length int64
	Num    int
	Denom  int
}

// End returns the first tick after the measure.
func (m Measure) End() int64 {
	return m.Begin + m.Length
}

// TimeSignature returns the measure's signature as an event at its start.
func (m Measure) TimeSignature() notation.TimeSignatureEvent {
	power := uint8(0)
	for d := m.Denom; d > 1; d >>= 1 {
		power++
	}
	return notation.TimeSignatureEvent{
		Numerator:        uint8(m.Num),
		DenominatorPower: power,
		Tick:             uint32(m.Begin),
	}
}

// Measures is the bar structure of one file.
type Measures []Measure

// At returns the index of the measure containing the tick, clamped to the
// last measure for ticks past the end.
func (ms Measures) At(tick int64) int {
	for i, m := range ms {
		if tick < m.End() || i == len(ms)-1 {
			return i
		}
	}
	return 0
}

// FindMeasures scans all tracks for meta time-signature events and lays
// out the measure grid from tick 0 to the last playable event. A signature
// change mid-measure truncates the current measure. Defaults to 4/4 when
// the file declares nothing.
func FindMeasures(mid *smf.SMF) (Measures, error) {
	ticks, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", mid.TimeFormat)
	}
	whole := 4 * int64(ticks)

	type timeSig struct {
		start      int64
		barLen     int64
		num, denom int
	}
	sigs := []timeSig{{start: 0, barLen: whole, num: 4, denom: 4}}
	var lastTime int64
	for _, t := range mid.Tracks {
		var time int64
		for _, ev := range t {
			time += int64(ev.Delta)
			if ev.Message.IsPlayable() && time > lastTime {
				lastTime = time
			}
			var num, denom, cpt, dsqpq uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq) {
				sigs = append(sigs, timeSig{
					start:  time,
					barLen: whole * int64(num) / int64(denom),
					num:    int(num),
					denom:  int(denom),
				})
			}
		}
	}
	if lastTime == 0 {
		return nil, nil
	}

	// Order by start; among signatures at the same tick, the last one
	// declared wins.
	sort.SliceStable(sigs, func(i, j int) bool {
		return sigs[i].start < sigs[j].start
	})
	effective := sigs[:0:0]
	for _, sig := range sigs {
		if len(effective) > 0 && effective[len(effective)-1].start == sig.start {
			effective[len(effective)-1] = sig
			continue
		}
		effective = append(effective, sig)
	}

	var measures Measures
	pos := int64(0)
	for si, sig := range effective {
		sectionEnd := lastTime
		if si+1 < len(effective) {
			sectionEnd = effective[si+1].start
		}
		for pos < sectionEnd {
			length := sig.barLen
			if pos+length > sectionEnd && si+1 < len(effective) {
				// Truncated by the next signature.
				length = sectionEnd - pos
			}
			measures = append(measures, Measure{
				Begin:  pos,
				Length: length,
				Num:    sig.num,
				Denom:  sig.denom,
			})
			pos += length
		}
	}
	return measures, nil
}
