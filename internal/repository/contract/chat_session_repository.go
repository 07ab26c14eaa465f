package contract

import (
	"context"
	"time"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChatSessionRepository persists the chat threads a user can switch between.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// Touch sets the title and last-activity time of one session.
	Touch(ctx context.Context, id uuid.UUID, title string, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
