package implementation

import (
	"context"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/mapper"
	"mindcare-be/internal/model"
	"mindcare-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) ReplaceAll(ctx context.Context, entries []*entity.KnowledgeEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.KnowledgeEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		models := make([]*model.KnowledgeEntry, len(entries))
		for i, e := range entries {
			models[i] = r.mapper.ToModel(e)
		}
		return tx.Create(&models).Error
	})
}

// FindNearest uses the pgvector L2 operator, ties broken by corpus position.
func (r *KnowledgeRepositoryImpl) FindNearest(ctx context.Context, query []float32, limit int) ([]*entity.KnowledgeEntry, error) {
	queryVector := pgvector.NewVector(query)

	var hits []*model.KnowledgeHit
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeEntry{}).
		Select("knowledge_entries.*, embedding <-> ? AS distance", queryVector).
		Order("distance ASC").
		Order("position ASC").
		Limit(limit).
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*entity.KnowledgeEntry, len(hits))
	for i, h := range hits {
		entries[i] = r.mapper.HitToEntity(h)
	}
	return entries, nil
}

func (r *KnowledgeRepositoryImpl) FindAll(ctx context.Context) ([]*entity.KnowledgeEntry, error) {
	var models []*model.KnowledgeEntry
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.KnowledgeEntry, len(models))
	for i, m := range models {
		entries[i] = r.mapper.ToEntity(m)
	}
	return entries, nil
}

func (r *KnowledgeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.KnowledgeEntry{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
