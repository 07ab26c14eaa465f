package mapper

import (
	"mindcare-be/internal/entity"
	"mindcare-be/internal/model"
)

type CrisisMapper struct{}

func NewCrisisMapper() *CrisisMapper {
	return &CrisisMapper{}
}

func (m *CrisisMapper) ToEntity(e *model.CrisisEvent) *entity.CrisisEvent {
	if e == nil {
		return nil
	}
	return &entity.CrisisEvent{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		Message:        e.Message,
		MatchedPhrases: jsonToStrings(e.MatchedPhrases),
		Notified:       e.Notified,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *CrisisMapper) ToModel(e *entity.CrisisEvent) *model.CrisisEvent {
	if e == nil {
		return nil
	}
	return &model.CrisisEvent{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		Message:        e.Message,
		MatchedPhrases: stringsToJSON(e.MatchedPhrases),
		Notified:       e.Notified,
		CreatedAt:      e.CreatedAt,
	}
}
