package implementation

import (
	"context"
	"fmt"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/repository/contract"
	"mindcare-be/pkg/rag"
)

// PgVectorStore serves retrieval from the knowledge_entries table.
type PgVectorStore struct {
	repo contract.KnowledgeRepository
}

var _ rag.VectorStore = (*PgVectorStore)(nil)

func NewPgVectorStore(repo contract.KnowledgeRepository) *PgVectorStore {
	return &PgVectorStore{repo: repo}
}

func (s *PgVectorStore) Replace(ctx context.Context, passages []rag.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("got %d passages and %d vectors", len(passages), len(vectors))
	}
	entries := make([]*entity.KnowledgeEntry, len(passages))
	for i, p := range passages {
		entries[i] = &entity.KnowledgeEntry{
			Position:  p.ID,
			Text:      p.Text,
			Embedding: vectors[i],
		}
	}
	return s.repo.ReplaceAll(ctx, entries)
}

// Search orders by pgvector's <->, which is plain L2. Distances are squared
// on the way out to match MemoryStore.
func (s *PgVectorStore) Search(ctx context.Context, query []float32, k int) ([]rag.Hit, error) {
	if k <= 0 {
		return []rag.Hit{}, nil
	}
	entries, err := s.repo.FindNearest(ctx, query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]rag.Hit, len(entries))
	for i, e := range entries {
		hits[i] = rag.Hit{
			Passage:  rag.Passage{ID: e.Position, Text: e.Text},
			Distance: e.Distance * e.Distance,
		}
	}
	return hits, nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	return int(n), err
}
