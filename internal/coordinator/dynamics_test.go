package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

func TestMarkingForVelocity_Buckets(t *testing.T) {
	for _, tc := range []struct {
		velocity uint8
		want     notation.DynamicMarking
	}{
		{1, notation.DynamicPP},
		{15, notation.DynamicPP},
		{16, notation.DynamicP},
		{32, notation.DynamicP},
		{33, notation.DynamicMP},
		{48, notation.DynamicMP},
		{49, notation.DynamicMF},
		{64, notation.DynamicMF},
		{65, notation.DynamicF},
		{80, notation.DynamicF},
		{81, notation.DynamicFF},
		{127, notation.DynamicFF},
	} {
		assert.Equal(t, tc.want, markingForVelocity(tc.velocity), "velocity %d", tc.velocity)
	}
}

func TestMapDynamics_SkipsRests(t *testing.T) {
	store := notation.NewStore([]notation.TimedNote{
		sounding(60, 0, 240),
		rest(240, 240),
		{Pitch: 62, Velocity: 100, StartTick: 480, Duration: 240},
	}, arena.New("test", 0))

	require.NoError(t, MapDynamics(store))

	require.NotNil(t, store.At(0).Dynamics)
	assert.Equal(t, notation.DynamicMF, store.At(0).Dynamics.Marking)
	assert.Equal(t, uint8(64), store.At(0).Dynamics.Velocity)
	assert.Nil(t, store.At(1).Dynamics)
	require.NotNil(t, store.At(2).Dynamics)
	assert.Equal(t, notation.DynamicFF, store.At(2).Dynamics.Marking)
	assert.NotZero(t, store.At(0).Flags&notation.FlagDynamicsMapping)
	assert.Zero(t, store.At(1).Flags&notation.FlagDynamicsMapping)
}
