package contract

import (
	"context"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CrisisEventRepository interface {
	Create(ctx context.Context, event *entity.CrisisEvent) error
	MarkNotified(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CrisisEvent, error)
}
