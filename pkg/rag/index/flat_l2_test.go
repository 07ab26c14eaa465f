package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchOrdersByDistance(t *testing.T) {
	ix := NewFlatL2(0)
	require.NoError(t, ix.Add(
		[]float32{0, 0},
		[]float32{10, 10},
		[]float32{1, 1},
	))

	results, err := ix.Search([]float32{0.9, 0.9}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Position)
	assert.InDelta(t, 0.02, results[0].Distance, 1e-5)
	assert.Equal(t, 0, results[1].Position)
	assert.InDelta(t, 1.62, results[1].Distance, 1e-5)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	ix := NewFlatL2(1)
	require.NoError(t, ix.Add([]float32{1}, []float32{-1}, []float32{1}))

	results, err := ix.Search([]float32{0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, positions(results))
}

func TestSearchClampsK(t *testing.T) {
	ix := NewFlatL2(0)
	require.NoError(t, ix.Add([]float32{1, 2}))

	results, err := ix.Search([]float32{1, 2}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = ix.Search([]float32{1, 2}, -1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEmptyIndexReturnsNothing(t *testing.T) {
	results, err := NewFlatL2(3).Search([]float32{1}, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDimensionMismatch(t *testing.T) {
	ix := NewFlatL2(0)
	require.NoError(t, ix.Add([]float32{1, 2}))

	err := ix.Add([]float32{1, 2}, []float32{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, ix.Len(), "partial batch must not be added")

	_, err = ix.Search([]float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAddCopiesVectors(t *testing.T) {
	ix := NewFlatL2(0)
	v := []float32{1, 1}
	require.NoError(t, ix.Add(v))
	v[0] = 100

	results, err := ix.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0), results[0].Distance)
}

func TestReset(t *testing.T) {
	ix := NewFlatL2(0)
	require.NoError(t, ix.Add([]float32{1, 1}))
	ix.Reset(0)
	assert.Equal(t, 0, ix.Len())
	require.NoError(t, ix.Add([]float32{1, 1, 1}))
	assert.Equal(t, 3, ix.Dim())
}

func positions(results []Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Position
	}
	return out
}
