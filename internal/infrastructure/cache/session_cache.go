package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"mail-hub/internal/domain"
)

// DefaultSize bounds the number of cached sessions when none is configured.
const DefaultSize = 10000

// SessionCache provides a bounded, thread-safe session cache with TTL.
// Implements domain.SessionCache.
type SessionCache struct {
	lru *expirable.LRU[string, domain.CachedSession]
}

// NewSessionCache creates a new session cache holding at most size entries
// for ttl each.
func NewSessionCache(size int, ttl time.Duration) *SessionCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &SessionCache{
		lru: expirable.NewLRU[string, domain.CachedSession](size, nil, ttl),
	}
}

// Get retrieves a cached session by session token.
func (c *SessionCache) Get(token string) (*domain.CachedSession, bool) {
	session, found := c.lru.Get(token)
	if !found {
		return nil, false
	}
	return &session, true
}

// Set stores session data in the cache.
func (c *SessionCache) Set(token string, session domain.CachedSession) {
	c.lru.Add(token, session)
}

// Len reports the number of live entries.
func (c *SessionCache) Len() int {
	return c.lru.Len()
}
