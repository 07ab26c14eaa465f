package implementation

import (
	"context"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/mapper"
	"mindcare-be/internal/model"
	"mindcare-be/internal/repository/contract"
	"mindcare-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CrisisEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CrisisMapper
}

func NewCrisisEventRepository(db *gorm.DB) contract.CrisisEventRepository {
	return &CrisisEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewCrisisMapper(),
	}
}

func (r *CrisisEventRepositoryImpl) Create(ctx context.Context, event *entity.CrisisEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *CrisisEventRepositoryImpl) MarkNotified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CrisisEvent{}).
		Where("id = ?", id).
		Update("notified", true).Error
}

func (r *CrisisEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CrisisEvent, error) {
	var models []*model.CrisisEvent
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CrisisEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
