package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenDenylist remembers revoked token ids until the token would have expired anyway.
type TokenDenylist struct {
	cache *cache.Cache
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{
		cache: cache.New(24*time.Hour, 30*time.Minute),
	}
}

func (d *TokenDenylist) Revoke(jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return
	}
	d.cache.Set(jti, struct{}{}, ttl)
}

func (d *TokenDenylist) IsRevoked(jti string) bool {
	_, found := d.cache.Get(jti)
	return found
}
