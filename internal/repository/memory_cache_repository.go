package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCacheRepository is an in-process cache with the same contract as the Redis repository.
type MemoryCacheRepository struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryCacheRepository constructs an empty in-process cache.
func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{entries: xsync.NewMapOf[string, memoryEntry](), now: time.Now}
}

// Get decodes the cached value into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	entry, ok := r.entries.Load(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores a JSON copy of value. A non-positive ttl never expires.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.entries.Store(key, entry)
	return nil
}

// DeleteByPattern removes keys matching a glob pattern such as "free:Monday:*".
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
	}
	r.entries.Range(func(key string, _ memoryEntry) bool {
		if matched, _ := path.Match(pattern, key); matched {
			r.entries.Delete(key)
		}
		return true
	})
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (r *MemoryCacheRepository) Len() int {
	return r.entries.Size()
}
