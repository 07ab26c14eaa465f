package mapper

import (
	"mindcare-be/internal/entity"
	"mindcare-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		SessionId:        c.SessionId,
		Message:          c.Message,
		Response:         c.Response,
		Emotion:          c.Emotion,
		IsCrisis:         c.IsCrisis,
		RetrievedContext: jsonToStrings(c.RetrievedContext),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:               c.Id,
		UserId:           c.UserId,
		SessionId:        c.SessionId,
		Message:          c.Message,
		Response:         c.Response,
		Emotion:          c.Emotion,
		IsCrisis:         c.IsCrisis,
		RetrievedContext: stringsToJSON(c.RetrievedContext),
		CreatedAt:        c.CreatedAt,
	}
}

func (m *ChatMapper) ConversationsToEntities(conversations []*model.Conversation) []*entity.Conversation {
	entities := make([]*entity.Conversation, len(conversations))
	for i, c := range conversations {
		entities[i] = m.ConversationToEntity(c)
	}
	return entities
}
