package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocWithinLimit(t *testing.T) {
	a := New("test", 1024)

	p, err := Alloc[int64](a)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(8), a.Used())
}

func TestArena_AllocOverLimit(t *testing.T) {
	a := New("test", 16)

	_, err := Slice[int64](a, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailure)
}

func TestArena_UnlimitedWhenZero(t *testing.T) {
	a := New("test", 0)

	_, err := Slice[byte](a, 1<<20)
	require.NoError(t, err)
}

func TestArena_ChildAccountsToParent(t *testing.T) {
	parent := New("parent", 0)
	_, err := Slice[byte](parent, 100)
	require.NoError(t, err)

	child, err := parent.Child("phase")
	require.NoError(t, err)
	_, err = Slice[byte](child, 50)
	require.NoError(t, err)

	assert.Equal(t, int64(50), child.Used())
	assert.Equal(t, int64(150), parent.Used())

	child.Release()
	assert.Equal(t, int64(100), parent.Used(), "child bytes return to parent on release")
	assert.Equal(t, int64(150), parent.Peak(), "peak keeps the high-water mark")
}

func TestArena_ChildSharesBudget(t *testing.T) {
	parent := New("parent", 100)
	_, err := Slice[byte](parent, 80)
	require.NoError(t, err)

	child, err := parent.Child("phase")
	require.NoError(t, err)
	_, err = Slice[byte](child, 30)
	assert.ErrorIs(t, err, ErrAllocationFailure, "child must not exceed the parent's remaining budget")
}

func TestArena_ParentRejectionLeavesChildClean(t *testing.T) {
	// The parent's budget moves after the child snapshots its limit; a
	// rejection by the parent must not leave phantom bytes in the child.
	parent := New("parent", 100)
	child, err := parent.Child("phase")
	require.NoError(t, err)
	_, err = Slice[byte](parent, 90)
	require.NoError(t, err)

	_, err = Slice[byte](child, 20)
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.Equal(t, int64(0), child.Used())
	assert.Equal(t, int64(0), child.Peak())

	child.Release()
	assert.Equal(t, int64(90), parent.Used(), "release of a clean child leaves the parent count intact")
}

func TestArena_UseAfterRelease(t *testing.T) {
	a := New("test", 0)
	a.Release()

	_, err := Alloc[int](a)
	assert.ErrorIs(t, err, ErrArenaNotInitialized)

	_, err = a.Child("phase")
	assert.ErrorIs(t, err, ErrArenaNotInitialized)
}

func TestArena_NilSafe(t *testing.T) {
	var a *Arena
	assert.Equal(t, int64(0), a.Used())
	assert.Equal(t, int64(0), a.Peak())
	_, err := Alloc[int](a)
	assert.ErrorIs(t, err, ErrArenaNotInitialized)
}
