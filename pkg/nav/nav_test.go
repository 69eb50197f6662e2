package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNextMiddleOfList(t *testing.T) {
	t.Parallel()

	res, ok := ResolveNext([]int64{10, 20, 30, 40}, 20, 1)
	require.True(t, ok)
	// The item that slides into the freed position is the successor.
	assert.Equal(t, int64(30), res.NextID)
	assert.Equal(t, 1, res.NextIndex)
}

func TestResolveNextLastItemFallsBack(t *testing.T) {
	t.Parallel()

	res, ok := ResolveNext([]int64{10, 20, 30}, 30, 2)
	require.True(t, ok)
	assert.Equal(t, int64(20), res.NextID)
	assert.Equal(t, 1, res.NextIndex)
}

func TestResolveNextFirstItem(t *testing.T) {
	t.Parallel()

	res, ok := ResolveNext([]int64{10, 20, 30}, 10, 0)
	require.True(t, ok)
	assert.Equal(t, int64(20), res.NextID)
	assert.Equal(t, 0, res.NextIndex)
}

func TestResolveNextListBecomesEmpty(t *testing.T) {
	t.Parallel()

	_, ok := ResolveNext([]int64{10}, 10, 0)
	assert.False(t, ok)
}

func TestResolveNextAlreadyRemovedIsIdempotent(t *testing.T) {
	t.Parallel()

	// A concurrent refetch dropped the id already: clamp the last known
	// index to the current bounds.
	res, ok := ResolveNext([]int64{10, 20}, 99, 5)
	require.True(t, ok)
	assert.Equal(t, int64(20), res.NextID)
	assert.Equal(t, 1, res.NextIndex)

	res, ok = ResolveNext([]int64{10, 20}, 99, -3)
	require.True(t, ok)
	assert.Equal(t, int64(10), res.NextID)
	assert.Equal(t, 0, res.NextIndex)
}

func TestResolveNextEmptyList(t *testing.T) {
	t.Parallel()

	_, ok := ResolveNext(nil, 99, 0)
	assert.False(t, ok)
}

func TestRemoveID(t *testing.T) {
	t.Parallel()

	in := []int64{1, 2, 3}
	out := RemoveID(in, 2)
	assert.Equal(t, []int64{1, 3}, out)
	assert.Equal(t, []int64{1, 2, 3}, in, "input untouched")

	assert.Equal(t, []int64{1, 3}, RemoveID(out, 99))
}
