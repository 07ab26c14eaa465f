package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID matches conversations and crisis events of one chat session.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return eq("session_id", s.SessionID).Apply(db)
}

type CrisisOnly struct{}

func (CrisisOnly) Apply(db *gorm.DB) *gorm.DB {
	return eq("is_crisis", true).Apply(db)
}
