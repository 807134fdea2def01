package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/notemark/notemark/internal/notation"
)

// newSMF builds a single-track file at 480 PPQ from the given closed track.
func newSMF(tracks ...smf.Track) *smf.SMF {
	mid := smf.New()
	mid.TimeFormat = smf.MetricTicks(480)
	for _, t := range tracks {
		mid.Add(t)
	}
	return mid
}

func TestNotes_PairsOnAndOff(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 64, 80))
	tr.Add(240, midi.NoteOff(0, 64))
	tr.Close(0)

	notes, err := Notes(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, notation.TimedNote{
		Pitch: 60, Velocity: 100, StartTick: 0, Duration: 480,
	}, notes[0])
	assert.Equal(t, notation.TimedNote{
		Pitch: 64, Velocity: 80, StartTick: 480, Duration: 240,
	}, notes[1])
}

func TestNotes_RestrikeClosesPrevious(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(240, midi.NoteOn(0, 60, 90))
	tr.Add(240, midi.NoteOff(0, 60))
	tr.Close(0)

	notes, err := Notes(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, uint32(240), notes[0].Duration)
	assert.Equal(t, uint8(100), notes[0].Velocity)
	assert.Equal(t, uint32(240), notes[1].StartTick)
	assert.Equal(t, uint8(90), notes[1].Velocity)
}

func TestNotes_ClosesOpenNotesAtEndOfFile(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOn(0, 62, 100))
	tr.Add(480, midi.NoteOff(0, 62))
	tr.Close(0)

	notes, err := Notes(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, uint32(960), notes[0].Duration, "dangling note closed at the last event tick")
}

func TestNotes_SortedAcrossTracks(t *testing.T) {
	var tr1 smf.Track
	tr1.Add(480, midi.NoteOn(0, 72, 100))
	tr1.Add(480, midi.NoteOff(0, 72))
	tr1.Close(0)
	var tr2 smf.Track
	tr2.Add(0, midi.NoteOn(1, 48, 100))
	tr2.Add(480, midi.NoteOff(1, 48))
	tr2.Close(0)

	notes, err := Notes(newSMF(tr1, tr2))
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, uint8(0), notes[0].Track)
	assert.Equal(t, uint8(72), notes[0].Pitch)
	assert.Equal(t, uint8(1), notes[1].Track)
}

func TestForEachEventWithTime_StopIteration(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 62, 100))
	tr.Add(480, midi.NoteOff(0, 62))
	tr.Close(0)

	seen := 0
	err := ForEachEventWithTime(newSMF(tr), func(time int64, track int, msg smf.Message) error {
		seen++
		if seen == 2 {
			return StopIteration
		}
		return nil
	})
	require.NoError(t, err, "stopping is not a failure")
	assert.Equal(t, 2, seen)
}

func TestFindMeasures_DefaultsToFourFour(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(3840, midi.NoteOff(0, 60))
	tr.Close(0)

	measures, err := FindMeasures(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, Measure{Begin: 0, Length: 1920, Num: 4, Denom: 4}, measures[0])
	assert.Equal(t, Measure{Begin: 1920, Length: 1920, Num: 4, Denom: 4}, measures[1])
}

func TestFindMeasures_SignatureChange(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(3, 4))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(1440, smf.MetaMeter(4, 4))
	tr.Add(1920, midi.NoteOff(0, 60))
	tr.Close(0)

	measures, err := FindMeasures(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, Measure{Begin: 0, Length: 1440, Num: 3, Denom: 4}, measures[0])
	assert.Equal(t, Measure{Begin: 1440, Length: 1920, Num: 4, Denom: 4}, measures[1])
}

func TestFindMeasures_MidMeasureChangeTruncates(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, smf.MetaMeter(2, 4))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Close(0)

	measures, err := FindMeasures(newSMF(tr))
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, int64(960), measures[0].Length, "first bar cut short by the signature change")
	assert.Equal(t, Measure{Begin: 960, Length: 960, Num: 2, Denom: 4}, measures[1])
}

func TestFindMeasures_EmptyFile(t *testing.T) {
	var tr smf.Track
	tr.Close(0)

	measures, err := FindMeasures(newSMF(tr))
	require.NoError(t, err)
	assert.Empty(t, measures)
}

func TestMeasuresAt_ClampsPastEnd(t *testing.T) {
	ms := Measures{
		{Begin: 0, Length: 1920, Num: 4, Denom: 4},
		{Begin: 1920, Length: 1920, Num: 4, Denom: 4},
	}
	assert.Equal(t, 0, ms.At(0))
	assert.Equal(t, 0, ms.At(1919))
	assert.Equal(t, 1, ms.At(1920))
	assert.Equal(t, 1, ms.At(99999))
}

func TestMeasureTimeSignature(t *testing.T) {
	sig := Measure{Begin: 1920, Length: 1440, Num: 6, Denom: 8}.TimeSignature()
	assert.Equal(t, notation.TimeSignatureEvent{Numerator: 6, DenominatorPower: 3, Tick: 1920}, sig)
	assert.Equal(t, 8, sig.Denominator())
}

func TestMeasureNotes_SynthesizesRests(t *testing.T) {
	m := Measure{Begin: 0, Length: 1920, Num: 4, Denom: 4}
	notes := []notation.TimedNote{
		{Pitch: 60, Velocity: 100, StartTick: 480, Duration: 480},
		{Pitch: 62, Velocity: 100, StartTick: 1920, Duration: 480},
	}

	out := MeasureNotes(notes, m)
	require.Len(t, out, 3)

	assert.True(t, out[0].IsRest())
	assert.Equal(t, uint32(0), out[0].StartTick)
	assert.Equal(t, uint32(480), out[0].Duration)
	assert.Equal(t, uint8(60), out[1].Pitch)
	assert.True(t, out[2].IsRest())
	assert.Equal(t, uint32(960), out[2].StartTick)
	assert.Equal(t, uint32(960), out[2].Duration)
}

func TestMeasureNotes_EmptyMeasureIsOneRest(t *testing.T) {
	m := Measure{Begin: 1920, Length: 1920, Num: 4, Denom: 4}

	out := MeasureNotes(nil, m)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsRest())
	assert.Equal(t, uint32(1920), out[0].StartTick)
	assert.Equal(t, uint32(1920), out[0].Duration)
}

func TestMeasureNotes_RestsSortAfterSoundingAtSameTick(t *testing.T) {
	m := Measure{Begin: 0, Length: 1920, Num: 4, Denom: 4}
	notes := []notation.TimedNote{
		{Pitch: 60, Velocity: 100, StartTick: 0, Duration: 960},
	}

	out := MeasureNotes(notes, m)
	require.Len(t, out, 2)
	assert.False(t, out[0].IsRest())
	assert.True(t, out[1].IsRest())
	assert.Equal(t, uint32(960), out[1].StartTick)
}
