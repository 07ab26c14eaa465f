package entity

import (
	"time"

	"github.com/google/uuid"
)

type CrisisEvent struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	SessionId      uuid.UUID
	Message        string
	MatchedPhrases []string
	Notified       bool
	CreatedAt      time.Time
}
