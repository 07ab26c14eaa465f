package rag

import (
	"context"
	"fmt"
	"sync"

	"mindcare-be/pkg/rag/index"
)

// MemoryStore keeps the corpus in process behind a FlatL2 index.
type MemoryStore struct {
	mu       sync.RWMutex
	index    *index.FlatL2
	passages []Passage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: index.NewFlatL2(0)}
}

func (s *MemoryStore) Replace(_ context.Context, passages []Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("got %d passages and %d vectors", len(passages), len(vectors))
	}

	fresh := index.NewFlatL2(0)
	if err := fresh.Add(vectors...); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = fresh
	s.passages = append([]Passage(nil), passages...)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, err := s.index.Search(query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{Passage: s.passages[r.Position], Distance: r.Distance}
	}
	return hits, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}
