package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CrisisEvent struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Message        string         `gorm:"type:text;not null"`
	MatchedPhrases datatypes.JSON `gorm:"type:jsonb"`
	Notified       bool           `gorm:"default:false"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (CrisisEvent) TableName() string {
	return "crisis_events"
}
