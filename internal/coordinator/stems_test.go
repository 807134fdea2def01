package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

func TestCalculateAndSetStemDirection_PitchRule(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{
		sounding(60, 0, 480),   // C4, below the middle line
		sounding(72, 480, 480), // C5, above
	}, arena.New("test", 0))

	require.NoError(t, CalculateAndSetStemDirection(store, 0, nil))
	require.NoError(t, CalculateAndSetStemDirection(store, 1, nil))

	assert.Equal(t, notation.StemUp, store.At(0).Stem.Direction)
	assert.Equal(t, -3, store.At(0).Stem.StaffLine)
	assert.Equal(t, notation.StemDown, store.At(1).Stem.Direction)
	assert.Equal(t, 3, store.At(1).Stem.StaffLine, "C5 sits within one step of the middle line")
}

func TestCalculateAndSetStemDirection_MiddleLineVoiceTieBreak(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{
		{Pitch: 71, Velocity: 64, StartTick: 0, Duration: 480, Channel: 0},   // voice 1
		{Pitch: 71, Velocity: 64, StartTick: 480, Duration: 480, Channel: 2}, // voice 3
	}, arena.New("test", 0))

	require.NoError(t, CalculateAndSetStemDirection(store, 0, nil))
	require.NoError(t, CalculateAndSetStemDirection(store, 1, nil))

	assert.Equal(t, notation.StemUp, store.At(0).Stem.Direction)
	assert.Equal(t, 1, store.At(0).Stem.Voice)
	assert.Equal(t, notation.StemDown, store.At(1).Stem.Direction)
	assert.Equal(t, 3, store.At(1).Stem.Voice)
}

func TestCalculateAndSetStemDirection_BeamGroupAgrees(t *testing.T) {
	// Mixed pitches around the middle line in one beam group: once the
	// first member's stem is set, the rest of the group adopts it.
	store := notation.NewStore([]notation.TimedNote{
		sounding(60, 0, 120),
		sounding(74, 120, 120),
	}, arena.New("test", 0))
	groups := []notation.BeamGroup{{GroupID: "g", NoteIndices: []int{0, 1}, StartTick: 0, EndTick: 240}}

	require.NoError(t, CalculateAndSetStemDirection(store, 0, groups))
	require.NoError(t, CalculateAndSetStemDirection(store, 1, groups))

	assert.Equal(t, notation.StemUp, store.At(0).Stem.Direction)
	assert.Equal(t, notation.StemUp, store.At(1).Stem.Direction, "beamed notes share the group's direction")
}

func TestCalculateAndSetStemDirection_ArenaRequired(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{sounding(60, 0, 480)}, nil)

	err := CalculateAndSetStemDirection(store, 0, nil)
	assert.ErrorIs(t, err, arena.ErrArenaNotInitialized)
}

func TestCalculateAndSetStemDirection_OverwritesExisting(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{sounding(60, 0, 480)}, arena.New("test", 0))
	_, err := store.AttachStem(0)
	require.NoError(t, err)
	store.SetArena(nil)

	// No arena, but existing StemInfo may be overwritten in place.
	require.NoError(t, CalculateAndSetStemDirection(store, 0, nil))
	assert.Equal(t, notation.StemUp, store.At(0).Stem.Direction)
}

func TestStaffLine(t *testing.T) {
	assert.Equal(t, 3, staffLine(70))
	assert.Equal(t, 3, staffLine(71))
	assert.Equal(t, 3, staffLine(72))
	assert.Equal(t, 5, staffLine(74))
	assert.Equal(t, 6, staffLine(76))
	assert.Equal(t, -3, staffLine(60))
	assert.Equal(t, 9, staffLine(83))
}

func TestDivFloor(t *testing.T) {
	assert.Equal(t, 2, divFloor(4, 2))
	assert.Equal(t, 2, divFloor(5, 2))
	assert.Equal(t, -3, divFloor(-5, 2))
	assert.Equal(t, -2, divFloor(-4, 2))
}
