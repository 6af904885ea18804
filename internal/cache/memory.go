package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMemorySize = 4096
	DefaultMemoryTTL  = 5 * time.Minute
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Cache bounded to size entries. Values are stored
// encoded so callers never share mutable state with the cache. Entries live
// at most maxTTL regardless of the ttl passed to Set; counters are kept
// apart and never evicted.
type Memory struct {
	entries *expirable.LRU[string, memoryEntry]

	mu       sync.Mutex
	counters map[string]int64

	now func() time.Time
}

// NewMemory creates an in-process cache with the default bounds
func NewMemory() *Memory {
	return NewMemoryWithLimits(DefaultMemorySize, DefaultMemoryTTL)
}

// NewMemoryWithLimits creates an in-process cache holding at most size entries
// for at most maxTTL each
func NewMemoryWithLimits(size int, maxTTL time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if maxTTL <= 0 {
		maxTTL = DefaultMemoryTTL
	}
	return &Memory{
		entries:  expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		counters: make(map[string]int64),
		now:      time.Now,
	}
}

// Get unmarshals the value at key into dest
func (c *Memory) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	n, isCounter := c.counters[key]
	c.mu.Unlock()
	if isCounter {
		return true, json.Unmarshal([]byte(strconv.FormatInt(n, 10)), dest)
	}

	e, ok := c.entries.Get(key)
	if !ok {
		return false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return false, nil
	}
	return true, json.Unmarshal(e.value, dest)
}

// Set stores value at key for ttl
func (c *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := memoryEntry{value: b}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Delete removes keys
func (c *Memory) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.counters, k)
		c.entries.Remove(k)
	}
	return nil
}

// Incr increments the integer at key, starting from zero
func (c *Memory) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

// Len reports the number of cached values, counters excluded
func (c *Memory) Len() int {
	return c.entries.Len()
}
