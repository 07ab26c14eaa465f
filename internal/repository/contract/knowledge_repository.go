package contract

import (
	"context"

	"mindcare-be/internal/entity"
)

type KnowledgeRepository interface {
	// ReplaceAll deletes every entry and inserts entries in one statement batch.
	ReplaceAll(ctx context.Context, entries []*entity.KnowledgeEntry) error
	// FindNearest orders by L2 distance to query, nearest first.
	FindNearest(ctx context.Context, query []float32, limit int) ([]*entity.KnowledgeEntry, error)
	FindAll(ctx context.Context) ([]*entity.KnowledgeEntry, error)
	Count(ctx context.Context) (int64, error)
}
