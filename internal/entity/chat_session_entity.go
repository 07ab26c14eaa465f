package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Conversation struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	SessionId        uuid.UUID
	Message          string
	Response         string
	Emotion          string
	IsCrisis         bool
	RetrievedContext []string
	CreatedAt        time.Time
}
