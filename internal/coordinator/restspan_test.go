package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

func rest(start, duration uint32) notation.TimedNote {
	return notation.TimedNote{StartTick: start, Duration: duration}
}

func sounding(pitch uint8, start, duration uint32) notation.TimedNote {
	return notation.TimedNote{Pitch: pitch, Velocity: 64, StartTick: start, Duration: duration}
}

func TestBuildRestSpans_Empty(t *testing.T) {
	store := notation.NewStore(nil, nil)
	spans, err := BuildRestSpans(store, arena.New("test", 0))
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestBuildRestSpans_MergesAdjacentAndOverlapping(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{
		rest(0, 100),
		rest(100, 50),  // adjacent: 100 <= 100
		rest(120, 100), // overlapping the extended span
		rest(400, 80),  // separate
	}, nil)

	spans, err := BuildRestSpans(store, arena.New("test", 0))
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, uint32(0), spans[0].StartTick)
	assert.Equal(t, uint32(220), spans[0].EndTick)
	assert.Equal(t, []int{0, 1, 2}, spans[0].NoteIndices)
	assert.Equal(t, uint32(400), spans[1].StartTick)
	assert.Equal(t, uint32(480), spans[1].EndTick)
	assert.Equal(t, []int{3}, spans[1].NoteIndices)
}

func TestBuildRestSpans_SoundingNoteTerminatesMerging(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{
		rest(0, 100),
		sounding(60, 50, 100),
		rest(100, 50), // would merge with span 0 by ticks, but the note broke the run
	}, nil)

	spans, err := BuildRestSpans(store, arena.New("test", 0))
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, []int{0}, spans[0].NoteIndices)
	assert.Equal(t, []int{2}, spans[1].NoteIndices)
}

func TestBuildRestSpans_CoversExactlyTheRestIndices(t *testing.T) {
	notes := []notation.TimedNote{
		rest(0, 10),
		sounding(62, 10, 20),
		rest(30, 10),
		rest(40, 10),
		sounding(64, 50, 20),
		rest(70, 10),
	}
	store := notation.NewStore(notes, nil)

	spans, err := BuildRestSpans(store, arena.New("test", 0))
	require.NoError(t, err)

	var covered []int
	var prevEnd uint32
	for _, s := range spans {
		assert.GreaterOrEqual(t, s.StartTick, prevEnd, "spans sorted and non-overlapping")
		prevEnd = s.EndTick
		covered = append(covered, s.NoteIndices...)
	}
	assert.Equal(t, []int{0, 2, 3, 5}, covered)
}

func TestBuildRestSpans_CopiesOptimizedFlag(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{rest(0, 100)}, arena.New("store", 0))
	info, err := store.AttachRest(0)
	require.NoError(t, err)
	info.IsOptimizedRest = true

	spans, err := BuildRestSpans(store, arena.New("test", 0))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.True(t, spans[0].IsOptimizedRest)
}

func TestBuildRestSpans_AllocationFailure(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{rest(0, 10), rest(20, 10)}, nil)
	_, err := BuildRestSpans(store, arena.New("tiny", 1))
	assert.ErrorIs(t, err, arena.ErrAllocationFailure)
}
