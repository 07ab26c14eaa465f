package mapper

import (
	"github.com/pgvector/pgvector-go"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(k *model.KnowledgeEntry) *entity.KnowledgeEntry {
	if k == nil {
		return nil
	}
	return &entity.KnowledgeEntry{
		Id:        k.Id,
		Position:  k.Position,
		Text:      k.Text,
		Embedding: k.Embedding.Slice(),
		CreatedAt: k.CreatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(k *entity.KnowledgeEntry) *model.KnowledgeEntry {
	if k == nil {
		return nil
	}
	return &model.KnowledgeEntry{
		Id:        k.Id,
		Position:  k.Position,
		Text:      k.Text,
		Embedding: pgvector.NewVector(k.Embedding),
		CreatedAt: k.CreatedAt,
	}
}

func (m *KnowledgeMapper) HitToEntity(h *model.KnowledgeHit) *entity.KnowledgeEntry {
	e := m.ToEntity(&h.KnowledgeEntry)
	e.Distance = h.Distance
	return e
}
