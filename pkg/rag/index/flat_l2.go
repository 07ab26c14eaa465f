// Package index provides an exact nearest-neighbour index over dense vectors.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Result is one search hit. Position is the insertion index of the vector.
type Result struct {
	Position int
	Distance float32
}

// FlatL2 scans every stored vector and ranks by squared Euclidean distance.
// The dimension is fixed by the first Add when created with dim 0.
type FlatL2 struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
}

func NewFlatL2(dim int) *FlatL2 {
	return &FlatL2{dim: dim}
}

func (ix *FlatL2) Dim() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

func (ix *FlatL2) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Add appends vectors. Either all are added or none.
func (ix *FlatL2) Add(vectors ...[]float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dim
	for i, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) == 0 || len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dims, index has %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	ix.dim = dim
	for _, v := range vectors {
		stored := make([]float32, len(v))
		copy(stored, v)
		ix.vectors = append(ix.vectors, stored)
	}
	return nil
}

// Reset drops all vectors and the learned dimension when it was not fixed.
func (ix *FlatL2) Reset(dim int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = dim
	ix.vectors = nil
}

// Search returns up to k results ordered by ascending distance; ties keep insertion order.
func (ix *FlatL2) Search(query []float32, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 || k <= 0 {
		return []Result{}, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	results := make([]Result, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = Result{Position: i, Distance: SquaredL2(query, v)}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})
	return results[:k], nil
}

// SquaredL2 assumes equal lengths.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
