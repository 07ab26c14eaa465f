package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// HistoryRepository caches the recent "User:"/"Assistant:" lines per chat session.
type HistoryRepository struct {
	cache *cache.Cache
}

func NewHistoryRepository(ttl time.Duration) *HistoryRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *HistoryRepository) Save(sessionID uuid.UUID, lines []string) {
	stored := make([]string, len(lines))
	copy(stored, lines)
	r.cache.Set(sessionID.String(), stored, cache.DefaultExpiration)
}

// Get returns a copy so callers can append freely.
func (r *HistoryRepository) Get(sessionID uuid.UUID) ([]string, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		lines := x.([]string)
		out := make([]string, len(lines))
		copy(out, lines)
		return out, true
	}
	return nil, false
}

func (r *HistoryRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}
