package entity

import "time"

type KnowledgeEntry struct {
	Id        int
	Position  int
	Text      string
	Embedding []float32
	Distance  float32 // only set by nearest-neighbour queries
	CreatedAt time.Time
}
