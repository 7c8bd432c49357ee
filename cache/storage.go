package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gofiber/fiber/v2"
)

// ErrRejected is returned when ristretto drops a write under contention
var ErrRejected = errors.New("cache rejected the write")

// Storage keeps Fiber middleware state (rate limiter counters) in process
// memory. It implements fiber.Storage.
type Storage struct {
	impl *ristretto.Cache[string, []byte]
}

var _ fiber.Storage = (*Storage)(nil)

// NewStorage creates an in-memory fiber.Storage backed by ristretto
func NewStorage() (*Storage, error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,     // number of keys to track frequency of (100k)
		MaxCost:     1 << 22, // maximum cost of cache (4MB)
		BufferItems: 64,      // number of keys per Get buffer
		Metrics:     true,
		Cost: func(value []byte) int64 {
			return int64(len(value))
		},
	})
	if err != nil {
		return nil, err
	}
	return &Storage{impl: impl}, nil
}

// Get returns nil, nil for missing and expired keys as fiber.Storage requires
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	value, found := s.impl.Get(key)
	if !found {
		return nil, nil
	}
	return value, nil
}

// Set stores val for exp; exp <= 0 never expires. Writes are applied before
// Set returns so the next Get sees them.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	// the caller may reuse val
	stored := make([]byte, len(val))
	copy(stored, val)

	var ok bool
	if exp <= 0 {
		ok = s.impl.Set(key, stored, int64(len(stored)))
	} else {
		ok = s.impl.SetWithTTL(key, stored, int64(len(stored)), exp)
	}
	if !ok {
		return ErrRejected
	}
	s.impl.Wait()
	return nil
}

// Delete removes key
func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	s.impl.Del(key)
	return nil
}

// Reset drops every stored key
func (s *Storage) Reset() error {
	s.impl.Clear()
	return nil
}

// Close stops the cache's background goroutines
func (s *Storage) Close() error {
	s.impl.Close()
	return nil
}

// Stats returns hit/miss counters for logging
func (s *Storage) Stats() map[string]any {
	metrics := s.impl.Metrics

	hitRate := 0.0
	totalRequests := metrics.Hits() + metrics.Misses()
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits()) / float64(totalRequests) * 100
	}

	return map[string]any{
		"hits":          metrics.Hits(),
		"misses":        metrics.Misses(),
		"keys_added":    metrics.KeysAdded(),
		"hit_rate":      hitRate,
		"sets_rejected": metrics.SetsRejected(),
	}
}
