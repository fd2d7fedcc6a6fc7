package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type IdemStore interface {
	Set(key string, ttl time.Duration) bool // true if set, false if the key already exists
}

type memoryIdemStore struct {
	mu      sync.Mutex
	m       map[string]time.Time
	inserts int
}

func newMemoryIdemStore() *memoryIdemStore { return &memoryIdemStore{m: make(map[string]time.Time)} }

// evictEvery bounds the map between sweeps: every N inserts the store
// drops entries past their TTL.
const evictEvery = 256

func (s *memoryIdemStore) Set(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if exp, ok := s.m[key]; ok && exp.After(now) {
		return false
	}
	s.inserts++
	if s.inserts%evictEvery == 0 {
		for k, exp := range s.m {
			if !exp.After(now) {
				delete(s.m, k)
			}
		}
	}
	s.m[key] = now.Add(ttl)
	return true
}

// Idempotency rejects replays of the same Idempotency-Key for the TTL
// window. Mobile clients on degraded links retry alert submissions.
func Idempotency(ttl time.Duration) gin.HandlerFunc {
	store := newMemoryIdemStore()
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}
		sum := sha256.Sum256([]byte(c.Request.Method + c.Request.URL.Path + key))
		if !store.Set(hex.EncodeToString(sum[:]), ttl) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate request"})
			return
		}
		c.Next()
	}
}
