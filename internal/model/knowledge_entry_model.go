package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// KnowledgeEntry stores one corpus sentence with its embedding.
// The column is dimensionless so any embedding model can be seeded.
type KnowledgeEntry struct {
	Id        int             `gorm:"primaryKey;autoIncrement"`
	Position  int             `gorm:"not null;uniqueIndex"`
	Text      string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}

// KnowledgeHit is a scan target for nearest-neighbour queries.
type KnowledgeHit struct {
	KnowledgeEntry
	Distance float32
}
