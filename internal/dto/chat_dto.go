package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	Message   string     `json:"message" validate:"required,max=4000"`
	SessionId *uuid.UUID `json:"session_id"`
}

type SendChatResponse struct {
	Emotion   string    `json:"emotion"`
	Reply     string    `json:"reply"`
	Crisis    bool      `json:"crisis"`
	SessionId uuid.UUID `json:"session_id"`
	Context   []string  `json:"context"`
}

type HistoryRequest struct {
	SessionId *uuid.UUID `json:"session_id" query:"session_id"`
}

type ConversationResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Emotion   string    `json:"emotion"`
	Crisis    bool      `json:"crisis"`
	Context   []string  `json:"context"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
